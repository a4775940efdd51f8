package model

// Job is a catalog entry describing the role being interviewed for
type Job struct {
	ID                   string   `json:"id" bson:"_id"`
	Title                string   `json:"title" bson:"title"`
	Level                string   `json:"level" bson:"level"`
	ExperienceYears      string   `json:"experienceYears,omitempty" bson:"experienceYears,omitempty"`
	Description          string   `json:"description,omitempty" bson:"description,omitempty"`
	MustHaveSkills       []string `json:"mustHaveSkills" bson:"mustHaveSkills"`
	NiceToHaveSkills     []string `json:"niceToHaveSkills" bson:"niceToHaveSkills"`
	TechnicalFocusAreas  []string `json:"technicalFocusAreas" bson:"technicalFocusAreas"`
	BehavioralFocusAreas []string `json:"behavioralFocusAreas" bson:"behavioralFocusAreas"`
}

// IsSenior reports whether the role is a senior-level position
func (j *Job) IsSenior() bool {
	switch j.Level {
	case "Senior", "Staff", "Principal", "Lead":
		return true
	}
	return false
}
