package scanner

import "github.com/aaravmahajanofficial/pos-terminal/internal/models"

type Step string

const (
	StepCamera    Step = "camera"
	StepResult    Step = "result"
	StepSelection Step = "selection"
	StepManual    Step = "manual"
)

// State is one of Camera, Result, Selection or Manual.
type State interface {
	Step() Step
	sealed()
}

type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureNoMatch   FailureKind = "no_match"
	FailureRejected  FailureKind = "rejected"
	// the product needs a size but none could be found
	FailureNoSizes FailureKind = "no_sizes"
)

// Failure is the retry-or-search prompt left on the camera after a capture that produced nothing.
type Failure struct {
	Kind        FailureKind `json:"kind"`
	Message     string      `json:"message"`
	SearchTerms []string    `json:"searchTerms,omitempty"`
}

type Source string

const (
	SourceCamera    Source = "camera"
	SourceSelection Source = "selection"
	SourceManual    Source = "manual"
)

type Camera struct {
	Failure *Failure
}

type Result struct {
	Product      models.Product
	Confidence   float64
	Source       Source
	Sizes        []models.SizeOption
	SelectedSize string
}

type Selection struct {
	Candidates  []models.Match
	SearchTerms []string
}

type Manual struct {
	Query      string
	Candidates []models.Product
	Searched   bool
}

func (Camera) Step() Step    { return StepCamera }
func (Result) Step() Step    { return StepResult }
func (Selection) Step() Step { return StepSelection }
func (Manual) Step() Step    { return StepManual }

func (Camera) sealed()    {}
func (Result) sealed()    {}
func (Selection) sealed() {}
func (Manual) sealed()    {}

func (r Result) hasSize(value string) bool {
	for _, s := range r.Sizes {
		if s.Value == value {
			return true
		}
	}

	return false
}

func (s Selection) find(productID string) (models.Match, bool) {
	for _, m := range s.Candidates {
		if m.ProductID == productID {
			return m, true
		}
	}

	return models.Match{}, false
}

func (m Manual) has(productID string) bool {
	for _, p := range m.Candidates {
		if p.ID == productID {
			return true
		}
	}

	return false
}

// View is the wire form of a State.
type View struct {
	Step         Step                `json:"step"`
	Failure      *Failure            `json:"failure,omitempty"`
	Product      *models.Product     `json:"product,omitempty"`
	Confidence   float64             `json:"confidence,omitempty"`
	Source       Source              `json:"source,omitempty"`
	Sizes        []models.SizeOption `json:"sizes,omitempty"`
	SelectedSize string              `json:"selectedSize,omitempty"`
	Matches      []models.Match      `json:"matches,omitempty"`
	SearchTerms  []string            `json:"searchTerms,omitempty"`
	Query        string              `json:"query,omitempty"`
	Products     []models.Product    `json:"products,omitempty"`
	Searched     bool                `json:"searched,omitempty"`
}

func Describe(s State) View {
	switch st := s.(type) {
	case Camera:
		return View{Step: StepCamera, Failure: st.Failure}
	case Result:
		product := st.Product
		return View{
			Step:         StepResult,
			Product:      &product,
			Confidence:   st.Confidence,
			Source:       st.Source,
			Sizes:        st.Sizes,
			SelectedSize: st.SelectedSize,
		}
	case Selection:
		return View{Step: StepSelection, Matches: st.Candidates, SearchTerms: st.SearchTerms}
	case Manual:
		return View{Step: StepManual, Query: st.Query, Products: st.Candidates, Searched: st.Searched}
	default:
		return View{Step: StepCamera}
	}
}
