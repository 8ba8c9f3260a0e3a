// Package servicedesk exposes incident and caller operations over the
// backend incident and user tables.
package servicedesk

import (
	"context"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools"
)

const (
	incidentTable = "incident"
	userTable     = "sys_user"

	resolvedState         = "6"
	defaultResolutionCode = "Solved (Permanently)"
)

var incidentFields = []string{
	"sys_id", "number", "short_description", "description", "state",
	"priority", "urgency", "impact", "category", "assigned_to",
	"caller_id", "opened_at", "sys_updated_on",
}

var userFields = []string{
	"sys_id", "user_name", "name", "email", "title", "department", "active",
}

// Descriptors returns the service_desk operation set for registration.
func Descriptors() []core.OperationDescriptor {
	return []core.OperationDescriptor{
		{
			Name:           "service_desk.list_incidents",
			Description:    "List incidents with optional state, assignee, and category filters",
			OptionalParams: []string{"limit", "offset", "query", "state", "assigned_to", "category"},
			Handler:        listIncidents,
		},
		{
			Name:           "service_desk.get_incident",
			Description:    "Fetch one incident by number or sys_id",
			RequiredParams: []string{"incident_number"},
			Handler:        getIncident,
		},
		{
			Name:           "service_desk.create_incident",
			Description:    "Open a new incident",
			RequiredParams: []string{"description"},
			OptionalParams: []string{"short_description", "caller_id", "category", "priority", "urgency", "impact"},
			Handler:        createIncident,
		},
		{
			Name:           "service_desk.update_incident",
			Description:    "Update arbitrary fields on an incident",
			RequiredParams: []string{"incident_number"},
			Handler:        updateIncident,
		},
		{
			Name:           "service_desk.add_comment",
			Description:    "Append a customer-visible comment or work note to an incident",
			RequiredParams: []string{"incident_number", "comment"},
			OptionalParams: []string{"work_note"},
			Handler:        addComment,
		},
		{
			Name:           "service_desk.resolve_incident",
			Description:    "Resolve an incident with closure notes",
			RequiredParams: []string{"incident_number", "resolution_notes"},
			OptionalParams: []string{"resolution_code"},
			Handler:        resolveIncident,
		},
		{
			Name:           "service_desk.list_users",
			Description:    "List user records",
			OptionalParams: []string{"limit", "offset", "query", "active"},
			Handler:        listUsers,
		},
		{
			Name:           "service_desk.get_user",
			Description:    "Fetch one user by username or sys_id",
			RequiredParams: []string{"user_id"},
			Handler:        getUser,
		},
	}
}

func listIncidents(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListIncidentsParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.EqualsCondition("state", params.State),
		core.EqualsCondition("assigned_to.user_name", params.AssignedTo),
		core.EqualsCondition("category", params.Category),
	)
	options.Fields = incidentFields

	records, err := tools.QueryRecords(ctx, gw, incidentTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("incidents", core.ShapeList(records, incidentFields), "incidents"), nil
}

func getIncident(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newGetIncidentParams(raw)
	if err != nil {
		return nil, err
	}
	record, err := tools.FindByIdentifier(ctx, gw, incidentTable, "number", params.IncidentNumber, "incident")
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("incident", core.ShapeItem(record, incidentFields), ""), nil
}

func createIncident(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateIncidentParams(raw)
	if err != nil {
		return nil, err
	}
	short := params.ShortDescription
	if short == "" {
		short = params.Description
	}
	payload := map[string]any{
		"description":       params.Description,
		"short_description": short,
	}
	setIfPresent(payload, "caller_id", params.CallerID)
	setIfPresent(payload, "category", params.Category)
	setIfPresent(payload, "priority", params.Priority)
	setIfPresent(payload, "urgency", params.Urgency)
	setIfPresent(payload, "impact", params.Impact)

	created, err := tools.CreateRecord(ctx, gw, incidentTable, payload)
	if err != nil {
		return nil, err
	}
	shaped := core.ShapeItem(created, incidentFields)
	number, _ := shaped["number"].(string)
	return core.ItemPayload("incident", shaped, "created incident "+number), nil
}

func updateIncident(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateIncidentParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, incidentTable, "number", params.IncidentNumber, "incident")
	if err != nil {
		return nil, err
	}
	updated, err := tools.UpdateRecord(ctx, gw, incidentTable, sysID, tools.MergeFields(map[string]any{}, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("incident", core.ShapeItem(updated, incidentFields), "updated incident "+params.IncidentNumber), nil
}

func addComment(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newAddCommentParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, incidentTable, "number", params.IncidentNumber, "incident")
	if err != nil {
		return nil, err
	}
	field := "comments"
	if params.WorkNote {
		field = "work_notes"
	}
	if _, err := tools.UpdateRecord(ctx, gw, incidentTable, sysID, map[string]any{field: params.Comment}); err != nil {
		return nil, err
	}
	return map[string]any{
		"incident_number": params.IncidentNumber,
		"message":         "comment added to " + params.IncidentNumber,
	}, nil
}

func resolveIncident(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newResolveIncidentParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, incidentTable, "number", params.IncidentNumber, "incident")
	if err != nil {
		return nil, err
	}
	code := params.ResolutionCode
	if code == "" {
		code = defaultResolutionCode
	}
	updated, err := tools.UpdateRecord(ctx, gw, incidentTable, sysID, map[string]any{
		"state":       resolvedState,
		"close_notes": params.ResolutionNotes,
		"close_code":  code,
	})
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("incident", core.ShapeItem(updated, incidentFields), "resolved incident "+params.IncidentNumber), nil
}

func listUsers(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListUsersParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.EqualsCondition("active", params.Active),
	)
	options.Fields = userFields

	records, err := tools.QueryRecords(ctx, gw, userTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("users", core.ShapeList(records, userFields), "users"), nil
}

func getUser(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newGetUserParams(raw)
	if err != nil {
		return nil, err
	}
	record, err := tools.FindByIdentifier(ctx, gw, userTable, "user_name", params.UserID, "user")
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("user", core.ShapeItem(record, userFields), ""), nil
}

func setIfPresent(payload map[string]any, key, value string) {
	if value != "" {
		payload[key] = value
	}
}
