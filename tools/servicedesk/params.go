package servicedesk

import "github.com/goliatone/go-itsm/core"

type ListIncidentsParams struct {
	Options    core.ListOptions
	State      string
	AssignedTo string
	Category   string
}

func newListIncidentsParams(raw map[string]any) (ListIncidentsParams, error) {
	reader := core.NewParamReader(raw)
	params := ListIncidentsParams{
		Options:    core.ReadListOptions(reader),
		State:      reader.String("state"),
		AssignedTo: reader.String("assigned_to"),
		Category:   reader.String("category"),
	}
	return params, reader.Err()
}

type GetIncidentParams struct {
	IncidentNumber string
}

func newGetIncidentParams(raw map[string]any) (GetIncidentParams, error) {
	reader := core.NewParamReader(raw)
	params := GetIncidentParams{IncidentNumber: reader.RequiredString("incident_number")}
	return params, reader.Err()
}

type CreateIncidentParams struct {
	Description      string
	ShortDescription string
	CallerID         string
	Category         string
	Priority         string
	Urgency          string
	Impact           string
}

func newCreateIncidentParams(raw map[string]any) (CreateIncidentParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateIncidentParams{
		Description:      reader.RequiredString("description"),
		ShortDescription: reader.String("short_description"),
		CallerID:         reader.String("caller_id"),
		Category:         reader.String("category"),
		Priority:         reader.String("priority"),
		Urgency:          reader.String("urgency"),
		Impact:           reader.String("impact"),
	}
	return params, reader.Err()
}

type UpdateIncidentParams struct {
	IncidentNumber string
	Fields         map[string]any
}

func newUpdateIncidentParams(raw map[string]any) (UpdateIncidentParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateIncidentParams{IncidentNumber: reader.RequiredString("incident_number")}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

type AddCommentParams struct {
	IncidentNumber string
	Comment        string
	WorkNote       bool
}

func newAddCommentParams(raw map[string]any) (AddCommentParams, error) {
	reader := core.NewParamReader(raw)
	params := AddCommentParams{
		IncidentNumber: reader.RequiredString("incident_number"),
		Comment:        reader.RequiredString("comment"),
		WorkNote:       reader.Bool("work_note", false),
	}
	return params, reader.Err()
}

type ResolveIncidentParams struct {
	IncidentNumber  string
	ResolutionNotes string
	ResolutionCode  string
}

func newResolveIncidentParams(raw map[string]any) (ResolveIncidentParams, error) {
	reader := core.NewParamReader(raw)
	params := ResolveIncidentParams{
		IncidentNumber:  reader.RequiredString("incident_number"),
		ResolutionNotes: reader.RequiredString("resolution_notes"),
		ResolutionCode:  reader.String("resolution_code"),
	}
	return params, reader.Err()
}

type ListUsersParams struct {
	Options core.ListOptions
	Active  string
}

func newListUsersParams(raw map[string]any) (ListUsersParams, error) {
	reader := core.NewParamReader(raw)
	params := ListUsersParams{
		Options: core.ReadListOptions(reader),
		Active:  reader.String("active"),
	}
	return params, reader.Err()
}

type GetUserParams struct {
	UserID string
}

func newGetUserParams(raw map[string]any) (GetUserParams, error) {
	reader := core.NewParamReader(raw)
	params := GetUserParams{UserID: reader.RequiredString("user_id")}
	return params, reader.Err()
}
