package brick

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/packetgraph/hooking"
)

var _ = Describe("Link", func() {
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

	multipole := func(name string, max int) *Brick {
		return mustNew(r, "flooder", Config{
			Name: name, Type: Multipole, WestMax: max, EastMax: max,
		})
	}

	It("should pair the edges of both ends", func() {
		a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
		b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})

		Expect(Link(a, b)).To(Succeed())

		e, ok := a.Edge(East, 0)
		Expect(ok).To(BeTrue())
		Expect(e).To(Equal(Edge{Link: b, PairIndex: 0}))

		e, ok = b.Edge(West, 0)
		Expect(ok).To(BeTrue())
		Expect(e).To(Equal(Edge{Link: a, PairIndex: 0}))

		Expect(a.Refcount()).To(Equal(2))
		Expect(b.Refcount()).To(Equal(2))
		Expect(a.Neighbors()).To(Equal([]*Brick{b}))
	})

	It("should count parallel edges", func() {
		a := multipole("a", 4)
		b := multipole("b", 4)

		Expect(Link(a, b)).To(Succeed())
		Expect(Link(a, b)).To(Succeed())
		Expect(LinksCount(a, b)).To(Equal(2))
		Expect(a.Refcount()).To(Equal(3))

		Expect(UnlinkEdge(a, b)).To(Succeed())
		Expect(LinksCount(a, b)).To(Equal(1))
		Expect(LinksCount(b, a)).To(Equal(1))
		Expect(a.Refcount()).To(Equal(2))
		Expect(b.Refcount()).To(Equal(2))
		expectMutual(a)
		expectMutual(b)
	})

	It("should refuse to go beyond the side capacity", func() {
		hub := multipole("hub", 4)
		peers := make([]*Brick, 5)

		for i := range peers {
			peers[i] = mustNew(r, "sink", Config{
				Name: string(rune('a' + i)), Type: Dipole,
			})
		}

		for i := 0; i < 4; i++ {
			Expect(Link(hub, peers[i])).To(Succeed())
		}

		err := Link(hub, peers[4])

		Expect(err).To(MatchError(ErrEdgeLimitExceeded))
		Expect(hub.EdgeCount(East)).To(Equal(4))
		Expect(hub.Refcount()).To(Equal(5))
		Expect(peers[4].Refcount()).To(Equal(1))
		Expect(peers[4].EdgeCount(West)).To(Equal(0))
	})

	It("should roll back the first half on failure", func() {
		a := multipole("a", 2)
		b := mustNew(r, "sink", Config{Name: "b", Type: Dipole})
		c := mustNew(r, "sink", Config{Name: "c", Type: Dipole})

		Expect(Link(c, b)).To(Succeed())

		err := Link(a, b)

		Expect(err).To(MatchError(ErrEdgeLimitExceeded))
		Expect(a.EdgeCount(East)).To(Equal(0))
		Expect(a.Refcount()).To(Equal(1))
		Expect(LinksCount(a, b)).To(Equal(0))
	})

	It("should refuse self links and destroyed bricks", func() {
		a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
		b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})

		Expect(Link(a, a)).To(MatchError(ErrInvalidArgument))
		Expect(Link(nil, a)).To(MatchError(ErrInvalidArgument))

		_, err := Decref(b)
		Expect(err).ToNot(HaveOccurred())
		Expect(Link(a, b)).To(MatchError(ErrInvalidArgument))
	})

	It("should link by side", func() {
		a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
		b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})
		c := mustNew(r, "forwarder", Config{Name: "c", Type: Dipole})

		Expect(LinkWest(b, a)).To(Succeed())
		Expect(LinkEast(b, c)).To(Succeed())

		Expect(b.Edges(West)[0].Link).To(BeIdenticalTo(a))
		Expect(b.Edges(East)[0].Link).To(BeIdenticalTo(c))
	})

	It("should chain links", func() {
		a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
		b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})
		c := mustNew(r, "forwarder", Config{Name: "c", Type: Dipole})

		Expect(ChainedLinks(a, b, c)).To(Succeed())
		Expect(LinksCount(a, b)).To(Equal(1))
		Expect(LinksCount(b, c)).To(Equal(1))
		Expect(b.Refcount()).To(Equal(3))

		Expect(ChainedLinks(c, b)).To(MatchError(ErrEdgeLimitExceeded))
	})

	It("should remember which side a monopole was linked as", func() {
		nic := mustNew(r, "sink", Config{Name: "nic", Type: Monopole})
		b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})

		Expect(nic.OutwardSide()).To(Equal(West))

		Expect(Link(b, nic)).To(Succeed())
		Expect(nic.OutwardSide()).To(Equal(West))
		Expect(nic.EdgeCount(West)).To(Equal(1))
		expectMutual(nic)
		expectMutual(b)

		other := mustNew(r, "forwarder", Config{Name: "other", Type: Dipole})
		Expect(Link(nic, other)).To(MatchError(ErrEdgeLimitExceeded))

		Expect(Unlink(nic)).To(Succeed())
		Expect(Link(nic, other)).To(Succeed())
		Expect(nic.OutwardSide()).To(Equal(East))
		expectMutual(nic)
	})

	It("should notify kinds and hooks of new edges", func() {
		kind := NewMockKind(mockCtrl)
		m := mustNew(r, "mock", Config{
			Name: "m", Type: Multipole, WestMax: 2, EastMax: 2, Params: kind,
		})
		a := mustNew(r, "sink", Config{Name: "a", Type: Dipole})
		b := mustNew(r, "sink", Config{Name: "b", Type: Dipole})

		var infos []LinkInfo
		m.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosLink))
			infos = append(infos, ctx.Item.(LinkInfo))
		}))

		kind.EXPECT().LinkNotify(West, 0)
		kind.EXPECT().LinkNotify(East, 0)

		Expect(Link(a, m)).To(Succeed())
		Expect(Link(m, b)).To(Succeed())

		Expect(infos).To(Equal([]LinkInfo{
			{Side: West, Edge: 0, Peer: a},
			{Side: East, Edge: 0, Peer: b},
		}))
	})

	Context("when unlinking", func() {
		It("should release the references held by the edges", func() {
			a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
			b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})
			c := mustNew(r, "forwarder", Config{Name: "c", Type: Dipole})

			Expect(ChainedLinks(a, b, c)).To(Succeed())
			Expect(Unlink(b)).To(Succeed())

			Expect(a.Refcount()).To(Equal(1))
			Expect(b.Refcount()).To(Equal(1))
			Expect(c.Refcount()).To(Equal(1))
			Expect(a.EdgeCount(East)).To(Equal(0))
			Expect(c.EdgeCount(West)).To(Equal(0))
			Expect(b.Neighbors()).To(BeEmpty())
		})

		It("should destroy peers held only by their edges", func() {
			kind := NewMockKind(mockCtrl)
			a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
			m := mustNew(r, "mock", Config{Name: "m", Type: Dipole, Params: kind})

			kind.EXPECT().LinkNotify(West, 0)
			Expect(Link(a, m)).To(Succeed())

			_, err := Decref(m)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.Destroyed()).To(BeFalse())

			gomock.InOrder(
				kind.EXPECT().UnlinkNotify(West, 0),
				kind.EXPECT().Destroy(),
			)

			Expect(Unlink(a)).To(Succeed())
			Expect(m.Destroyed()).To(BeTrue())
			Expect(a.Destroyed()).To(BeFalse())
			Expect(r.Lookup("m")).To(BeNil())
		})

		It("should keep the unlinked brick alive during the walk", func() {
			kind := NewMockKind(mockCtrl)
			m := mustNew(r, "mock", Config{
				Name: "m", Type: Multipole, WestMax: 2, EastMax: 2, Params: kind,
			})
			a := mustNew(r, "sink", Config{Name: "a", Type: Dipole})
			b := mustNew(r, "sink", Config{Name: "b", Type: Dipole})

			kind.EXPECT().LinkNotify(gomock.Any(), gomock.Any()).Times(2)
			Expect(Link(a, m)).To(Succeed())
			Expect(Link(m, b)).To(Succeed())

			_, err := Decref(m)
			Expect(err).ToNot(HaveOccurred())

			kind.EXPECT().UnlinkNotify(West, 0)
			kind.EXPECT().UnlinkNotify(East, 0)
			kind.EXPECT().Destroy().Times(1)

			Expect(Unlink(m)).To(Succeed())
			Expect(m.Destroyed()).To(BeTrue())
			Expect(a.Refcount()).To(Equal(1))
			Expect(b.Refcount()).To(Equal(1))
		})

		It("should fail to unlink bricks that are not adjacent", func() {
			a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
			b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})

			Expect(UnlinkEdge(a, b)).To(MatchError(ErrNoLink))
		})

		It("should find the edge from either side", func() {
			a := mustNew(r, "forwarder", Config{Name: "a", Type: Dipole})
			b := mustNew(r, "forwarder", Config{Name: "b", Type: Dipole})

			Expect(Link(a, b)).To(Succeed())
			Expect(UnlinkEdge(b, a)).To(Succeed())
			Expect(LinksCount(a, b)).To(Equal(0))
		})
	})
})
