package vision

import "context"

// PhotoAnalysis es la inferencia por foto que entrega el backend de vision.
type PhotoAnalysis struct {
	Setting     string   `json:"setting"`      // outdoor, indoor, urban, nature, home, event
	PeopleCount string   `json:"people_count"` // solo | group
	Activities  []string `json:"activities,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Style       string   `json:"style,omitempty"`
}

// Provider abstrae el backend de computer vision. El motor solo fija el
// contrato por foto; la implementacion real se sustituye por despliegue.
type Provider interface {
	AnalyzePhoto(ctx context.Context, photoURL string) (PhotoAnalysis, error)
}
