package hk_test

import (
	"sync/atomic"
	"time"

	"github.com/aistorelabs/rendezvous/hk"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Housekeeper", func() {
	It("runs a registered job after its interval and reschedules it", func() {
		var calls int32
		hk.Reg("test-job"+hk.NameSuffix, func() time.Duration {
			atomic.AddInt32(&calls, 1)
			return 20 * time.Millisecond
		}, 10*time.Millisecond)
		defer hk.Unreg("test-job" + hk.NameSuffix)

		Eventually(func() int32 {
			return atomic.LoadInt32(&calls)
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">=", 2))
	})

	It("stops calling a job once unregistered", func() {
		var calls int32
		name := "unreg-job" + hk.NameSuffix
		hk.Reg(name, func() time.Duration {
			atomic.AddInt32(&calls, 1)
			return 5 * time.Millisecond
		}, 5*time.Millisecond)

		Eventually(func() int32 { return atomic.LoadInt32(&calls) }, time.Second, 5*time.Millisecond).
			Should(BeNumerically(">=", 1))

		hk.Unreg(name)
		after := atomic.LoadInt32(&calls)
		time.Sleep(50 * time.Millisecond)
		Expect(atomic.LoadInt32(&calls)).To(BeNumerically("<=", after+1))
	})

	It("UnregIf reports whether a job was present", func() {
		name := "maybe-job" + hk.NameSuffix
		Expect(hk.DefaultHK.UnregIf(name)).To(BeFalse())

		hk.Reg(name, func() time.Duration { return time.Hour }, time.Hour)
		Expect(hk.DefaultHK.UnregIf(name)).To(BeTrue())
		Expect(hk.DefaultHK.UnregIf(name)).To(BeFalse())
	})
})
