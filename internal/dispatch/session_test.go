package dispatch_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/dispatch"
)

type fakeMetrics struct {
	recomputed int
	rejected   []error
}

func (f *fakeMetrics) Recomputed(string, time.Duration, []dashboard.Output) { f.recomputed++ }
func (f *fakeMetrics) Rejected(_ string, err error)                        { f.rejected = append(f.rejected, err) }

func contextFor(def dashboard.Definition) *dashboard.Context {
	ds, err := datasets.Builtin(def.Dataset)
	Expect(err).NotTo(HaveOccurred())
	c, err := dashboard.New(def, ds)
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Session", func() {
	var (
		session  *dispatch.Session
		rendered []dispatch.Update
		metrics  *fakeMetrics
	)

	record := dispatch.RendererFunc(func(u dispatch.Update) error {
		rendered = append(rendered, u)
		return nil
	})

	Context("with the iris dashboard", func() {
		BeforeEach(func() {
			rendered = nil
			metrics = &fakeMetrics{}
			var err error
			session, err = dispatch.NewSession(contextFor(dashboard.Iris()),
				dispatch.WithRenderer(record),
				dispatch.WithMetrics(metrics),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("renders every output on start", func() {
			u, err := session.Start()
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Seq).To(Equal(uint64(1)))
			Expect(u.Trigger).To(Equal("initial"))
			Expect(u.Outputs).To(HaveLen(4))
			Expect(rendered).To(HaveLen(1))
			Expect(session.Phase()).To(Equal(dispatch.Idle))
		})

		It("recomputes on a control change", func() {
			_, err := session.Start()
			Expect(err).NotTo(HaveOccurred())

			u, err := session.Handle(dispatch.ControlChanged{
				Control: "species",
				Value:   controls.List("versicolor", "setosa"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Seq).To(Equal(uint64(2)))
			Expect(u.Outputs[0].Spec.Points()).To(Equal(100))

			v, _ := session.State().Get("species")
			Expect(v.Items()).To(Equal([]string{"setosa", "versicolor"}))
			Expect(metrics.recomputed).To(Equal(2))
		})

		It("keeps the previous state when an event is invalid", func() {
			before, err := session.Start()
			Expect(err).NotTo(HaveOccurred())

			_, err = session.Handle(dispatch.ControlChanged{Control: "x-col", Value: controls.Scalar("petal_size")})
			Expect(err).To(MatchError(controls.ErrInvalidValue))

			_, err = session.Handle(dispatch.ControlChanged{Control: "colour", Value: controls.Scalar("red")})
			Expect(err).To(MatchError(controls.ErrUnknownControl))

			Expect(session.State().Equal(before.State)).To(BeTrue())
			Expect(session.Last().Seq).To(Equal(before.Seq))
			Expect(rendered).To(HaveLen(1))
			Expect(metrics.rejected).To(HaveLen(2))
		})

		It("refuses clicks on a dashboard without selection", func() {
			_, err := session.Handle(dispatch.Clicked{Output: "scatter", Location: "x"})
			Expect(errors.Is(err, dashboard.ErrNotClickable)).To(BeTrue())
		})

		It("returns ErrBusy for events sent while rendering", func() {
			var inner error
			s, err := dispatch.NewSession(contextFor(dashboard.Iris()),
				dispatch.WithRenderer(dispatch.RendererFunc(func(u dispatch.Update) error {
					_, inner = session.Handle(dispatch.Reset{})
					return nil
				})),
			)
			Expect(err).NotTo(HaveOccurred())
			session = s

			_, err = session.Start()
			Expect(err).NotTo(HaveOccurred())
			Expect(inner).To(MatchError(dispatch.ErrBusy))
			Expect(session.Phase()).To(Equal(dispatch.Idle))
		})

		It("applies presets and resets to defaults", func() {
			preset := controls.NewState(map[string]controls.Value{
				"x-col":   controls.Scalar("petal_length"),
				"species": controls.List("virginica"),
			})
			u, err := session.Handle(dispatch.Applied{Name: "petals", State: preset})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Trigger).To(Equal("preset petals"))
			Expect(u.Outputs[0].Spec.Title).To(Equal("Scatter: petal_length vs sepal_width"))

			u, err = session.Handle(dispatch.Reset{})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.State.Equal(session.Context().Defaults())).To(BeTrue())
		})

		It("reports renderer errors after committing", func() {
			s, err := dispatch.NewSession(contextFor(dashboard.Iris()),
				dispatch.WithRenderer(dispatch.RendererFunc(func(dispatch.Update) error {
					return errors.New("screen gone")
				})),
			)
			Expect(err).NotTo(HaveOccurred())

			u, err := s.Handle(dispatch.ControlChanged{Control: "y-col", Value: controls.Scalar("petal_width")})
			Expect(err).To(MatchError(ContainSubstring("screen gone")))
			Expect(u.Seq).To(Equal(uint64(1)))
			v, _ := s.State().Get("y-col")
			Expect(v.String()).To(Equal("petal_width"))
		})
	})

	Context("with the gapminder dashboard", func() {
		BeforeEach(func() {
			rendered = nil
			var err error
			session, err = dispatch.NewSession(contextFor(dashboard.Gapminder()), dispatch.WithRenderer(record))
			Expect(err).NotTo(HaveOccurred())
		})

		It("falls back to the global average until a country is clicked", func() {
			u, err := session.Start()
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Outputs[2].Spec.Title).To(Equal("Global Average Life Expectancy Over Time"))

			u, err = session.Handle(dispatch.Clicked{Output: "choropleth", Location: "BRA"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Selection).To(Equal("BRA"))
			Expect(u.Outputs[2].Spec.Title).To(Equal("Brazil: Life Expectancy Over Time"))

			u, err = session.Handle(dispatch.SelectionCleared{})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Selection).To(BeEmpty())
			Expect(u.Outputs[2].Spec.Title).To(HavePrefix("Global Average"))
		})

		It("snaps the year slider to a mark", func() {
			u, err := session.Handle(dispatch.ControlChanged{Control: "year", Value: controls.Number(1990)})
			Expect(err).NotTo(HaveOccurred())
			v, _ := u.State.Get("year")
			Expect(v.String()).To(Equal("1992"))
			Expect(u.Outputs[0].Spec.Title).To(Equal("Life Expectancy (1992)"))
		})

		It("ignores clicks on unknown locations", func() {
			_, err := session.Handle(dispatch.Clicked{Output: "choropleth", Location: "ZZZ"})
			Expect(err).To(MatchError(dashboard.ErrUnknownLocation))
			Expect(session.Selection()).To(BeEmpty())
		})
	})

	It("rejects an invalid initial state", func() {
		c := contextFor(dashboard.Iris())
		_, err := dispatch.NewSession(c, dispatch.WithState(c.Defaults().Without("species")))
		Expect(err).To(MatchError(controls.ErrMissingControl))
	})
})
