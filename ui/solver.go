package ui

import "fmt"

// SolverData is the readout shown in the solver panel.
type SolverData struct {
	DivergenceBefore float64
	DivergenceAfter  float64
	AverageDensity   float64
	MaxSpeed         float64
	MeanSpeed        float64
	Iterations       int
	Relaxation       float64
	Stiffness        float64
	DensityBias      bool
}

// Reduction returns the fraction of divergence removed by projection.
func (d SolverData) Reduction() float64 {
	if d.DivergenceBefore <= 0 {
		return 0
	}
	return 1 - d.DivergenceAfter/d.DivergenceBefore
}

func solverData(data any) SolverData {
	if d, ok := data.(SolverData); ok {
		return d
	}
	if d, ok := data.(*SolverData); ok && d != nil {
		return *d
	}
	return SolverData{}
}

// SolverSections describes the solver panel layout.
var SolverSections = []SectionDescriptor{
	{
		ID:    "divergence",
		Title: "Divergence",
		Fields: []FieldDescriptor{
			{
				ID: "div_before", Label: "Before", Widget: WidgetText, Format: "%.3f",
				Getter: func(d any) float32 { return float32(solverData(d).DivergenceBefore) },
			},
			{
				ID: "div_after", Label: "After", Widget: WidgetText, Format: "%.3f",
				Getter: func(d any) float32 { return float32(solverData(d).DivergenceAfter) },
			},
			{
				ID: "reduction", Label: "Removed", Widget: WidgetBar, Format: "%.2f", Range: DefaultRange(),
				Getter: func(d any) float32 { return float32(solverData(d).Reduction()) },
			},
		},
	},
	{
		ID:    "flow",
		Title: "Flow",
		Fields: []FieldDescriptor{
			{
				ID: "density", Label: "Avg density", Widget: WidgetText, Format: "%.3f",
				Getter: func(d any) float32 { return float32(solverData(d).AverageDensity) },
			},
			{
				ID: "max_speed", Label: "Max speed", Widget: WidgetText, Format: "%.2f",
				Getter: func(d any) float32 { return float32(solverData(d).MaxSpeed) },
			},
			{
				ID: "mean_speed", Label: "Mean speed", Widget: WidgetText, Format: "%.2f",
				Getter: func(d any) float32 { return float32(solverData(d).MeanSpeed) },
			},
		},
	},
	{
		ID:    "settings",
		Title: "Projection",
		Fields: []FieldDescriptor{
			{
				ID: "iterations", Label: "Iterations", Widget: WidgetText,
				TextGetter: func(d any) string { return fmt.Sprintf("%d", solverData(d).Iterations) },
			},
			{
				ID: "relaxation", Label: "Relaxation", Widget: WidgetText, Format: "%.2f",
				Getter: func(d any) float32 { return float32(solverData(d).Relaxation) },
			},
			{
				ID: "stiffness", Label: "Stiffness", Widget: WidgetText, Format: "%.2f",
				Getter:  func(d any) float32 { return float32(solverData(d).Stiffness) },
				Visible: func(d any) bool { return solverData(d).DensityBias },
			},
			{
				ID: "bias", Label: "Density bias", Widget: WidgetText,
				TextGetter: func(d any) string { return onOff(solverData(d).DensityBias) },
			},
		},
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// SolverPanel renders solver diagnostics.
type SolverPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSolverPanel creates a new solver panel.
func NewSolverPanel(x, y, width int32) *SolverPanel {
	return &SolverPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *SolverPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Height returns the panel height for data.
func (p *SolverPanel) Height(data SolverData) int32 {
	h := p.renderer.Theme.Padding * 2
	for _, sd := range SolverSections {
		h += p.renderer.SectionHeight(sd, data)
	}
	return h
}

// Draw renders the panel.
func (p *SolverPanel) Draw(data SolverData) {
	r := p.renderer
	r.DrawPanel(p.x, p.y, p.width, p.Height(data))

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	for _, sd := range SolverSections {
		y = r.DrawSection(x, y, sd, data, p.width-r.Theme.Padding*2)
	}
}
