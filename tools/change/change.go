// Package change exposes change-request operations over the backend change
// table, including the approval workflow transitions.
package change

import (
	"context"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools"
)

const changeTable = "change_request"

var changeFields = []string{
	"sys_id", "number", "short_description", "description", "state",
	"type", "priority", "risk", "approval", "assigned_to",
	"start_date", "end_date", "sys_updated_on",
}

type ListChangesParams struct {
	Options core.ListOptions
	State   string
	Type    string
}

func newListChangesParams(raw map[string]any) (ListChangesParams, error) {
	reader := core.NewParamReader(raw)
	params := ListChangesParams{
		Options: core.ReadListOptions(reader),
		State:   reader.String("state"),
		Type:    reader.String("type"),
	}
	return params, reader.Err()
}

type GetChangeParams struct {
	ChangeNumber string
}

func newGetChangeParams(raw map[string]any) (GetChangeParams, error) {
	reader := core.NewParamReader(raw)
	params := GetChangeParams{ChangeNumber: reader.RequiredString("change_number")}
	return params, reader.Err()
}

type CreateChangeParams struct {
	ShortDescription string
	Description      string
	Type             string
	Risk             string
	StartDate        string
	EndDate          string
}

func newCreateChangeParams(raw map[string]any) (CreateChangeParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateChangeParams{
		ShortDescription: reader.RequiredString("short_description"),
		Description:      reader.String("description"),
		Type:             reader.String("type"),
		Risk:             reader.String("risk"),
		StartDate:        reader.String("start_date"),
		EndDate:          reader.String("end_date"),
	}
	return params, reader.Err()
}

type UpdateChangeParams struct {
	ChangeNumber string
	Fields       map[string]any
}

func newUpdateChangeParams(raw map[string]any) (UpdateChangeParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateChangeParams{ChangeNumber: reader.RequiredString("change_number")}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

type ApproveChangeParams struct {
	ChangeNumber string
	Comments     string
}

func newApproveChangeParams(raw map[string]any) (ApproveChangeParams, error) {
	reader := core.NewParamReader(raw)
	params := ApproveChangeParams{
		ChangeNumber: reader.RequiredString("change_number"),
		Comments:     reader.String("comments"),
	}
	return params, reader.Err()
}

type RejectChangeParams struct {
	ChangeNumber string
	Reason       string
}

func newRejectChangeParams(raw map[string]any) (RejectChangeParams, error) {
	reader := core.NewParamReader(raw)
	params := RejectChangeParams{
		ChangeNumber: reader.RequiredString("change_number"),
		Reason:       reader.RequiredString("reason"),
	}
	return params, reader.Err()
}

// Descriptors returns the change operation set for registration.
func Descriptors() []core.OperationDescriptor {
	return []core.OperationDescriptor{
		{
			Name:           "change.list_change_requests",
			Description:    "List change requests with optional state and type filters",
			OptionalParams: []string{"limit", "offset", "query", "state", "type"},
			Handler:        listChangeRequests,
		},
		{
			Name:           "change.get_change_request",
			Description:    "Fetch one change request by number or sys_id",
			RequiredParams: []string{"change_number"},
			Handler:        getChangeRequest,
		},
		{
			Name:           "change.create_change_request",
			Description:    "Open a new change request",
			RequiredParams: []string{"short_description"},
			OptionalParams: []string{"description", "type", "risk", "start_date", "end_date"},
			Handler:        createChangeRequest,
		},
		{
			Name:           "change.update_change_request",
			Description:    "Update arbitrary fields on a change request",
			RequiredParams: []string{"change_number"},
			Handler:        updateChangeRequest,
		},
		{
			Name:           "change.approve_change",
			Description:    "Approve a change request",
			RequiredParams: []string{"change_number"},
			OptionalParams: []string{"comments"},
			Handler:        approveChange,
		},
		{
			Name:           "change.reject_change",
			Description:    "Reject a change request with a reason",
			RequiredParams: []string{"change_number", "reason"},
			Handler:        rejectChange,
		},
	}
}

func listChangeRequests(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListChangesParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.EqualsCondition("state", params.State),
		core.EqualsCondition("type", params.Type),
	)
	options.Fields = changeFields

	records, err := tools.QueryRecords(ctx, gw, changeTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("change_requests", core.ShapeList(records, changeFields), "change requests"), nil
}

func getChangeRequest(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newGetChangeParams(raw)
	if err != nil {
		return nil, err
	}
	record, err := tools.FindByIdentifier(ctx, gw, changeTable, "number", params.ChangeNumber, "change request")
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("change_request", core.ShapeItem(record, changeFields), ""), nil
}

func createChangeRequest(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateChangeParams(raw)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"short_description": params.ShortDescription}
	for key, value := range map[string]string{
		"description": params.Description,
		"type":        params.Type,
		"risk":        params.Risk,
		"start_date":  params.StartDate,
		"end_date":    params.EndDate,
	} {
		if value != "" {
			payload[key] = value
		}
	}

	created, err := tools.CreateRecord(ctx, gw, changeTable, payload)
	if err != nil {
		return nil, err
	}
	shaped := core.ShapeItem(created, changeFields)
	number, _ := shaped["number"].(string)
	return core.ItemPayload("change_request", shaped, "created change request "+number), nil
}

func updateChangeRequest(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateChangeParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, changeTable, "number", params.ChangeNumber, "change request")
	if err != nil {
		return nil, err
	}
	updated, err := tools.UpdateRecord(ctx, gw, changeTable, sysID, tools.MergeFields(map[string]any{}, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("change_request", core.ShapeItem(updated, changeFields), "updated change request "+params.ChangeNumber), nil
}

func approveChange(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newApproveChangeParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, changeTable, "number", params.ChangeNumber, "change request")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"approval": "approved"}
	if params.Comments != "" {
		payload["comments"] = params.Comments
	}
	updated, err := tools.UpdateRecord(ctx, gw, changeTable, sysID, payload)
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("change_request", core.ShapeItem(updated, changeFields), "approved change request "+params.ChangeNumber), nil
}

func rejectChange(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newRejectChangeParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, changeTable, "number", params.ChangeNumber, "change request")
	if err != nil {
		return nil, err
	}
	updated, err := tools.UpdateRecord(ctx, gw, changeTable, sysID, map[string]any{
		"approval": "rejected",
		"comments": params.Reason,
	})
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("change_request", core.ShapeItem(updated, changeFields), "rejected change request "+params.ChangeNumber), nil
}
