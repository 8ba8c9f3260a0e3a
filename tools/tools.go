// Package tools holds the table API plumbing shared by the operation
// modules: record lookup, creation, and update against backend tables.
package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-itsm/core"
)

// TableURL builds the endpoint for one backend table.
func TableURL(gw core.Gateway, table string) string {
	return gw.Config().APIURL() + "/table/" + strings.TrimSpace(table)
}

// QueryRecords lists records matching the options.
func QueryRecords(ctx context.Context, gw core.Gateway, table string, options core.ListOptions) ([]map[string]any, error) {
	body, err := gw.Execute(ctx, core.TransportRequest{
		Method: http.MethodGet,
		URL:    TableURL(gw, table),
		Query:  options.QueryParams(),
	})
	if err != nil {
		return nil, err
	}
	return core.ResultList(body), nil
}

// FindRecord fetches the first record matching a query, reporting a
// not-found error when nothing matches.
func FindRecord(ctx context.Context, gw core.Gateway, table, query, noun, identifier string) (map[string]any, error) {
	records, err := QueryRecords(ctx, gw, table, core.ListOptions{Limit: 1, Query: query})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, core.RecordNotFoundError(noun, identifier)
	}
	return records[0], nil
}

// FindByIdentifier resolves a record by its display number or sys_id,
// whichever matches.
func FindByIdentifier(ctx context.Context, gw core.Gateway, table, numberField, identifier, noun string) (map[string]any, error) {
	identifier = strings.TrimSpace(identifier)
	query := numberField + "=" + identifier + "^ORsys_id=" + identifier
	return FindRecord(ctx, gw, table, query, noun, identifier)
}

// FindSysID resolves an identifier to the record's sys_id.
func FindSysID(ctx context.Context, gw core.Gateway, table, numberField, identifier, noun string) (string, error) {
	record, err := FindByIdentifier(ctx, gw, table, numberField, identifier, noun)
	if err != nil {
		return "", err
	}
	sysID, _ := record["sys_id"].(string)
	if strings.TrimSpace(sysID) == "" {
		return "", core.RecordNotFoundError(noun, identifier)
	}
	return sysID, nil
}

// CreateRecord inserts one record and returns the created row.
func CreateRecord(ctx context.Context, gw core.Gateway, table string, payload map[string]any) (map[string]any, error) {
	body, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	response, err := gw.Execute(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    TableURL(gw, table),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	item, _ := core.ResultItem(response)
	return item, nil
}

// UpdateRecord patches one record by sys_id and returns the updated row.
func UpdateRecord(ctx context.Context, gw core.Gateway, table, sysID string, payload map[string]any) (map[string]any, error) {
	body, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	response, err := gw.Execute(ctx, core.TransportRequest{
		Method: http.MethodPatch,
		URL:    TableURL(gw, table) + "/" + strings.TrimSpace(sysID),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	item, _ := core.ResultItem(response)
	return item, nil
}

func encodePayload(payload map[string]any) ([]byte, error) {
	if len(payload) == 0 {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, core.InvalidParameterError(err)
	}
	return body, nil
}

// MergeFields overlays passthrough fields onto a payload without letting
// them override the explicitly set keys.
func MergeFields(payload map[string]any, extra map[string]any) map[string]any {
	for key, value := range extra {
		if _, exists := payload[key]; exists {
			continue
		}
		if value == nil {
			continue
		}
		payload[key] = value
	}
	return payload
}
