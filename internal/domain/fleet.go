package domain

// Aircraft is a plane type in the fleet. Capacity becomes the seat count of
// every flight it operates.
type Aircraft struct {
	ID       int64  `json:"id"`
	Model    string `json:"model"`
	Capacity int    `json:"capacity"`
}

func AircraftID(a Aircraft) int64 { return a.ID }

type Crew struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Captain string `json:"captain"`
}

func CrewID(c Crew) int64 { return c.ID }
