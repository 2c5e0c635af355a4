package brick

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Registry", func() {
	var (
		mockCtrl *gomock.Controller
		r        *Registry
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		r = newTestRegistry()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should list kinds in order", func() {
		Expect(r.Kinds()).To(Equal([]string{"flooder", "forwarder", "mock", "sink"}))
		Expect(r.HasKind("sink")).To(BeTrue())
		Expect(r.HasKind("switch")).To(BeFalse())
	})

	It("should refuse duplicated kinds", func() {
		err := r.Register("sink", func(*Brick, Config) (Impl, error) {
			return &sink{}, nil
		})

		Expect(err).To(MatchError(ErrDuplicateName))
	})

	It("should refuse an anonymous kind", func() {
		Expect(r.Register("", nil)).To(MatchError(ErrInvalidArgument))
	})

	It("should fail on unknown kinds", func() {
		_, err := r.New("switch", Config{Name: "sw", Type: Dipole})

		Expect(err).To(MatchError(ErrUnknownKind))
	})

	It("should validate the config", func() {
		_, err := r.New("sink", Config{Type: Dipole})
		Expect(err).To(MatchError(ErrInvalidConfig))

		_, err = r.New("sink", Config{Name: "s", Type: Dipole, EastMax: 2})
		Expect(err).To(MatchError(ErrInvalidConfig))

		_, err = r.New("sink", Config{Name: "s", Type: Multipole, WestMax: 1})
		Expect(err).To(MatchError(ErrInvalidConfig))

		_, err = r.New("sink", Config{
			Name: "s", Type: Multipole, WestMax: 1, EastMax: MaxEdges + 1,
		})
		Expect(err).To(MatchError(ErrInvalidConfig))

		Expect(r.Live()).To(Equal(0))
	})

	It("should create a brick holding one reference", func() {
		b := mustNew(r, "sink", Config{Name: "s", Type: Dipole})

		Expect(b.Name()).To(Equal("s"))
		Expect(b.Kind()).To(Equal("sink"))
		Expect(b.Type()).To(Equal(Dipole))
		Expect(b.Refcount()).To(Equal(1))
		Expect(b.Registry()).To(BeIdenticalTo(r))
		Expect(b.Pollable()).To(BeFalse())
		Expect(r.Lookup("s")).To(BeIdenticalTo(b))
	})

	It("should keep names unique until the brick is destroyed", func() {
		b := mustNew(r, "sink", Config{Name: "s", Type: Dipole})

		_, err := r.New("forwarder", Config{Name: "s", Type: Dipole})
		Expect(err).To(MatchError(ErrDuplicateName))

		_, err = Decref(b)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Lookup("s")).To(BeNil())

		mustNew(r, "forwarder", Config{Name: "s", Type: Dipole})
	})

	It("should tear down a partially built brick", func() {
		kind := NewMockKind(mockCtrl)
		failure := errors.New("device busy")

		Expect(r.Register("faulty", func(*Brick, Config) (Impl, error) {
			return kind, failure
		})).To(Succeed())

		kind.EXPECT().Destroy()

		_, err := r.New("faulty", Config{Name: "f", Type: Monopole})

		Expect(err).To(BeIdenticalTo(failure))
		Expect(r.Lookup("f")).To(BeNil())
	})

	It("should refuse a factory returning nothing", func() {
		Expect(r.Register("empty", func(*Brick, Config) (Impl, error) {
			return nil, nil
		})).To(Succeed())

		_, err := r.New("empty", Config{Name: "e", Type: Monopole})

		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(r.Live()).To(Equal(0))
	})
})
