package rdvsrv

import "fmt"

// strictQuery parses r's query string, rejecting any key not in allowed and
// any key supplied more than once -- the distilled spec's "strict handlers
// reject extra params" rule (§4.4).
func strictQuery(values map[string][]string, allowed ...string) (map[string]string, error) {
	allow := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allow[k] = true
	}
	out := make(map[string]string, len(allowed))
	for k, vs := range values {
		if !allow[k] {
			return nil, fmt.Errorf("unknown query parameter %q", k)
		}
		if len(vs) != 1 {
			return nil, fmt.Errorf("query parameter %q must be single-valued", k)
		}
		out[k] = vs[0]
	}
	return out, nil
}
