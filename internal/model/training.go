package model

// TrainingSample is a labeled feature record exported to the ML service.
type TrainingSample struct {
	Base
	MLFeatures
	Label  int     `db:"label" json:"label"`
	Source *string `db:"source" json:"source,omitempty"`
}

type CreateTrainingSampleRequest struct {
	MLFeatures
	Label  int     `json:"label" binding:"min=0,max=1"`
	Source *string `json:"source"`
}
