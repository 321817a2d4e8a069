package cat

import "strings"

// Profile is the owner-supplied cat profile collected by the wellness wizard.
// Field tags match the wizard form names so wizard snapshots and API payloads
// share one shape.
type Profile struct {
	Name     string `json:"catName"`
	Age      string `json:"catAge"`
	Breed    string `json:"catBreed"`
	Sex      string `json:"catSex"`
	Neutered string `json:"catNeutered"`

	Weight      string `json:"catWeight"`
	Diet        string `json:"catDiet"`
	Feeding     string `json:"catFeeding"`
	Activity    string `json:"catActivity"`
	Environment string `json:"catEnvironment"`

	BehaviorIssues  []string `json:"behaviorIssues"`
	BehaviorDetails string   `json:"behaviorDetails"`
	Training        string   `json:"catTraining"`

	PlayTime           string   `json:"playTime"`
	FavoriteActivities []string `json:"favoriteActivities"`
	HomeEnrichment     []string `json:"homeEnrichment"`
	OtherPets          string   `json:"otherPets"`

	PrimaryGoal string `json:"primaryGoal"`
}

// HasName reports whether the required name field is populated.
func (p Profile) HasName() bool {
	return strings.TrimSpace(p.Name) != ""
}

// IsEmpty reports whether no field of the profile carries data.
func (p Profile) IsEmpty() bool {
	return !p.HasName() &&
		p.Age == "" && p.Breed == "" && p.Sex == "" && p.Neutered == "" &&
		p.Weight == "" && p.Diet == "" && p.Feeding == "" && p.Activity == "" &&
		p.Environment == "" && len(p.BehaviorIssues) == 0 && p.BehaviorDetails == "" &&
		p.Training == "" && p.PlayTime == "" && len(p.FavoriteActivities) == 0 &&
		len(p.HomeEnrichment) == 0 && p.OtherPets == "" && p.PrimaryGoal == ""
}
