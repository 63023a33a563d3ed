package api

import "github.com/p-n-ai/pai-assess/internal/schedule"

type createWorkflowRequest struct {
	TestKind string               `json:"testKind" validate:"omitempty,oneof=syllabus remedial"`
	Edit     *schedule.EditRecord `json:"edit,omitempty"`
}

type selectGroupRequest struct {
	GroupID string `json:"groupId" validate:"notblank"`
}

type setKindRequest struct {
	TestKind string `json:"testKind" validate:"required,oneof=syllabus remedial"`
}

type setTagRequest struct {
	Tag   string `json:"tag" validate:"notblank"`
	Month string `json:"month,omitempty" validate:"omitempty,month"`
}

type setMaxScoreRequest struct {
	MaxScore int `json:"maxScore"`
}

type setRowFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=subject testDate deadline"`
	Value string `json:"value"`
}

type toggleClassResponse struct {
	Class    int  `json:"class"`
	Selected bool `json:"selected"`
}

type addRowResponse struct {
	Class int `json:"class"`
	RowID int `json:"rowId"`
}

type groupSubjects struct {
	Class    int      `json:"class"`
	Subjects []string `json:"subjects"`
}

type errorResponse struct {
	Error      string              `json:"error"`
	Fields     map[string]string   `json:"fields,omitempty"`
	Violations schedule.Violations `json:"violations,omitempty"`
	Transition *transitionResponse `json:"transition,omitempty"`
}

type transitionResponse struct {
	Gate schedule.GateKind `json:"gate"`
	From string            `json:"from"`
	To   string            `json:"to"`
}
