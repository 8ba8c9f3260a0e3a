// Package sysadmin exposes user and group administration over the backend
// user tables.
package sysadmin

import (
	"context"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools"
)

const (
	userTable  = "sys_user"
	groupTable = "sys_user_group"
)

var userFields = []string{
	"sys_id", "user_name", "first_name", "last_name", "name", "email",
	"title", "department", "active", "locked_out",
}

var groupFields = []string{
	"sys_id", "name", "description", "manager", "active", "email",
}

type ListUsersParams struct {
	Options    core.ListOptions
	Active     string
	Department string
}

func newListUsersParams(raw map[string]any) (ListUsersParams, error) {
	reader := core.NewParamReader(raw)
	params := ListUsersParams{
		Options:    core.ReadListOptions(reader),
		Active:     reader.String("active"),
		Department: reader.String("department"),
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

type CreateUserParams struct {
	Username   string
	Email      string
	FirstName  string
	LastName   string
	Title      string
	Department string
}

func newCreateUserParams(raw map[string]any) (CreateUserParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateUserParams{
		Username:   reader.RequiredString("username"),
		Email:      reader.RequiredString("email"),
		FirstName:  reader.String("first_name"),
		LastName:   reader.String("last_name"),
		Title:      reader.String("title"),
		Department: reader.String("department"),
	}
	return params, reader.Err()
}

type UpdateUserParams struct {
	UserID string
	Fields map[string]any
}

func newUpdateUserParams(raw map[string]any) (UpdateUserParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateUserParams{UserID: reader.RequiredString("user_id")}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

type ListGroupsParams struct {
	Options core.ListOptions
	Active  string
}

func newListGroupsParams(raw map[string]any) (ListGroupsParams, error) {
	reader := core.NewParamReader(raw)
	params := ListGroupsParams{
		Options: core.ReadListOptions(reader),
		Active:  reader.String("active"),
	}
	return params, reader.Err()
}

type CreateGroupParams struct {
	Name        string
	Description string
	Manager     string
}

func newCreateGroupParams(raw map[string]any) (CreateGroupParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateGroupParams{
		Name:        reader.RequiredString("name"),
		Description: reader.String("description"),
		Manager:     reader.String("manager"),
	}
	return params, reader.Err()
}

type UpdateGroupParams struct {
	GroupID string
	Fields  map[string]any
}

func newUpdateGroupParams(raw map[string]any) (UpdateGroupParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateGroupParams{GroupID: reader.RequiredString("group_id")}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

// Descriptors returns the system operation set for registration.
func Descriptors() []core.OperationDescriptor {
	return []core.OperationDescriptor{
		{
			Name:           "system.list_users",
			Description:    "List user records with optional filters",
			OptionalParams: []string{"limit", "offset", "query", "active", "department"},
			Handler:        listUsers,
		},
		{
			Name:           "system.get_user",
			Description:    "Fetch one user by username or sys_id",
			RequiredParams: []string{"user_id"},
			Handler:        getUser,
		},
		{
			Name:           "system.create_user",
			Description:    "Create a user record",
			RequiredParams: []string{"username", "email"},
			OptionalParams: []string{"first_name", "last_name", "title", "department"},
			Handler:        createUser,
		},
		{
			Name:           "system.update_user",
			Description:    "Update arbitrary fields on a user record",
			RequiredParams: []string{"user_id"},
			Handler:        updateUser,
		},
		{
			Name:           "system.list_groups",
			Description:    "List assignment groups",
			OptionalParams: []string{"limit", "offset", "query", "active"},
			Handler:        listGroups,
		},
		{
			Name:           "system.create_group",
			Description:    "Create an assignment group",
			RequiredParams: []string{"name"},
			OptionalParams: []string{"description", "manager"},
			Handler:        createGroup,
		},
		{
			Name:           "system.update_group",
			Description:    "Update arbitrary fields on a group",
			RequiredParams: []string{"group_id"},
			Handler:        updateGroup,
		},
	}
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
		core.EqualsCondition("department.name", params.Department),
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

func createUser(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateUserParams(raw)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"user_name": params.Username,
		"email":     params.Email,
	}
	for key, value := range map[string]string{
		"first_name": params.FirstName,
		"last_name":  params.LastName,
		"title":      params.Title,
		"department": params.Department,
	} {
		if value != "" {
			payload[key] = value
		}
	}

	created, err := tools.CreateRecord(ctx, gw, userTable, payload)
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("user", core.ShapeItem(created, userFields), "created user "+params.Username), nil
}

func updateUser(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateUserParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, userTable, "user_name", params.UserID, "user")
	if err != nil {
		return nil, err
	}
	updated, err := tools.UpdateRecord(ctx, gw, userTable, sysID, tools.MergeFields(map[string]any{}, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("user", core.ShapeItem(updated, userFields), "updated user "+params.UserID), nil
}

func listGroups(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListGroupsParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.EqualsCondition("active", params.Active),
	)
	options.Fields = groupFields

	records, err := tools.QueryRecords(ctx, gw, groupTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("groups", core.ShapeList(records, groupFields), "groups"), nil
}

func createGroup(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateGroupParams(raw)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"name": params.Name}
	if params.Description != "" {
		payload["description"] = params.Description
	}
	if params.Manager != "" {
		payload["manager"] = params.Manager
	}

	created, err := tools.CreateRecord(ctx, gw, groupTable, payload)
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("group", core.ShapeItem(created, groupFields), "created group "+params.Name), nil
}

func updateGroup(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateGroupParams(raw)
	if err != nil {
		return nil, err
	}
	record, err := tools.FindByIdentifier(ctx, gw, groupTable, "name", params.GroupID, "group")
	if err != nil {
		return nil, err
	}
	sysID, _ := record["sys_id"].(string)
	updated, err := tools.UpdateRecord(ctx, gw, groupTable, sysID, tools.MergeFields(map[string]any{}, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("group", core.ShapeItem(updated, groupFields), "updated group "+params.GroupID), nil
}
