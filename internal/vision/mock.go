package vision

import (
	"context"
	"hash/fnv"
)

// MockProvider permite tests y ambientes demo sin backend de vision real.
// Si Fixed no es nil devuelve siempre ese resultado; si no, deriva una
// inferencia determinista del hash de la URL (misma foto, mismo resultado).
type MockProvider struct {
	Fixed *PhotoAnalysis
	Err   error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var (
	mockSettings   = []string{"outdoor", "indoor", "urban", "nature", "home", "event"}
	mockActivities = []string{
		"hiking", "dining", "traveling", "working", "exercising",
		"creating", "socializing", "reading", "cooking", "dancing",
	}
	mockMoods  = []string{"joyful", "relaxed", "focused", "adventurous", "contemplative"}
	mockStyles = []string{"casual", "formal", "sporty", "artistic", "professional"}
)

func (m *MockProvider) AnalyzePhoto(_ context.Context, photoURL string) (PhotoAnalysis, error) {
	if m.Err != nil {
		return PhotoAnalysis{}, m.Err
	}
	if m.Fixed != nil {
		return *m.Fixed, nil
	}

	h := fnv.New32a()
	h.Write([]byte(photoURL))
	seed := h.Sum32()

	people := "solo"
	if seed%5 < 2 {
		people = "group"
	}

	count := int(seed%3) + 1
	activities := make([]string, 0, count)
	for i := 0; i < count; i++ {
		activities = append(activities, mockActivities[(int(seed)+i*7)%len(mockActivities)])
	}

	return PhotoAnalysis{
		Setting:     mockSettings[seed%uint32(len(mockSettings))],
		PeopleCount: people,
		Activities:  activities,
		Mood:        mockMoods[seed%uint32(len(mockMoods))],
		Style:       mockStyles[seed%uint32(len(mockStyles))],
	}, nil
}
