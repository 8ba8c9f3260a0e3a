// Package catalog exposes service catalog item and category operations.
package catalog

import (
	"context"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools"
)

const (
	itemTable     = "sc_cat_item"
	categoryTable = "sc_category"
)

var itemFields = []string{
	"sys_id", "name", "short_description", "description", "category",
	"price", "active", "sys_updated_on",
}

var categoryFields = []string{
	"sys_id", "title", "description", "active", "sys_updated_on",
}

type ListItemsParams struct {
	Options  core.ListOptions
	Category string
	Active   string
}

func newListItemsParams(raw map[string]any) (ListItemsParams, error) {
	reader := core.NewParamReader(raw)
	params := ListItemsParams{
		Options:  core.ReadListOptions(reader),
		Category: reader.String("category"),
		Active:   reader.String("active"),
	}
	return params, reader.Err()
}

type GetItemParams struct {
	ItemID string
}

func newGetItemParams(raw map[string]any) (GetItemParams, error) {
	reader := core.NewParamReader(raw)
	params := GetItemParams{ItemID: reader.RequiredString("item_id")}
	return params, reader.Err()
}

type CreateItemParams struct {
	Name             string
	ShortDescription string
	Description      string
	Category         string
	Price            string
}

func newCreateItemParams(raw map[string]any) (CreateItemParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateItemParams{
		Name:             reader.RequiredString("name"),
		ShortDescription: reader.String("short_description"),
		Description:      reader.String("description"),
		Category:         reader.String("category"),
		Price:            reader.String("price"),
	}
	return params, reader.Err()
}

type UpdateItemParams struct {
	ItemID string
	Fields map[string]any
}

func newUpdateItemParams(raw map[string]any) (UpdateItemParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateItemParams{ItemID: reader.RequiredString("item_id")}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

type ListCategoriesParams struct {
	Options core.ListOptions
	Active  string
}

func newListCategoriesParams(raw map[string]any) (ListCategoriesParams, error) {
	reader := core.NewParamReader(raw)
	params := ListCategoriesParams{
		Options: core.ReadListOptions(reader),
		Active:  reader.String("active"),
	}
	return params, reader.Err()
}

type CreateCategoryParams struct {
	Title       string
	Description string
}

func newCreateCategoryParams(raw map[string]any) (CreateCategoryParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateCategoryParams{
		Title:       reader.RequiredString("title"),
		Description: reader.String("description"),
	}
	return params, reader.Err()
}

type UpdateCategoryParams struct {
	CategoryID string
	Fields     map[string]any
}

func newUpdateCategoryParams(raw map[string]any) (UpdateCategoryParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateCategoryParams{CategoryID: reader.RequiredString("category_id")}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

// Descriptors returns the catalog operation set for registration.
func Descriptors() []core.OperationDescriptor {
	return []core.OperationDescriptor{
		{
			Name:           "catalog.list_catalog_items",
			Description:    "List catalog items with optional category filter",
			OptionalParams: []string{"limit", "offset", "query", "category", "active"},
			Handler:        listCatalogItems,
		},
		{
			Name:           "catalog.get_catalog_item",
			Description:    "Fetch one catalog item by name or sys_id",
			RequiredParams: []string{"item_id"},
			Handler:        getCatalogItem,
		},
		{
			Name:           "catalog.create_catalog_item",
			Description:    "Create a catalog item",
			RequiredParams: []string{"name"},
			OptionalParams: []string{"short_description", "description", "category", "price"},
			Handler:        createCatalogItem,
		},
		{
			Name:           "catalog.update_catalog_item",
			Description:    "Update arbitrary fields on a catalog item",
			RequiredParams: []string{"item_id"},
			Handler:        updateCatalogItem,
		},
		{
			Name:           "catalog.list_catalog_categories",
			Description:    "List catalog categories",
			OptionalParams: []string{"limit", "offset", "query", "active"},
			Handler:        listCatalogCategories,
		},
		{
			Name:           "catalog.create_catalog_category",
			Description:    "Create a catalog category",
			RequiredParams: []string{"title"},
			OptionalParams: []string{"description"},
			Handler:        createCatalogCategory,
		},
		{
			Name:           "catalog.update_catalog_category",
			Description:    "Update arbitrary fields on a catalog category",
			RequiredParams: []string{"category_id"},
			Handler:        updateCatalogCategory,
		},
	}
}

func listCatalogItems(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListItemsParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.EqualsCondition("category.title", params.Category),
		core.EqualsCondition("active", params.Active),
	)
	options.Fields = itemFields

	records, err := tools.QueryRecords(ctx, gw, itemTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("catalog_items", core.ShapeList(records, itemFields), "catalog items"), nil
}

func getCatalogItem(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newGetItemParams(raw)
	if err != nil {
		return nil, err
	}
	record, err := tools.FindByIdentifier(ctx, gw, itemTable, "name", params.ItemID, "catalog item")
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("catalog_item", core.ShapeItem(record, itemFields), ""), nil
}

func createCatalogItem(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateItemParams(raw)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"name": params.Name}
	for key, value := range map[string]string{
		"short_description": params.ShortDescription,
		"description":       params.Description,
		"category":          params.Category,
		"price":             params.Price,
	} {
		if value != "" {
			payload[key] = value
		}
	}

	created, err := tools.CreateRecord(ctx, gw, itemTable, payload)
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("catalog_item", core.ShapeItem(created, itemFields), "created catalog item "+params.Name), nil
}

func updateCatalogItem(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateItemParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, itemTable, "name", params.ItemID, "catalog item")
	if err != nil {
		return nil, err
	}
	updated, err := tools.UpdateRecord(ctx, gw, itemTable, sysID, tools.MergeFields(map[string]any{}, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("catalog_item", core.ShapeItem(updated, itemFields), "updated catalog item "+params.ItemID), nil
}

func listCatalogCategories(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListCategoriesParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.EqualsCondition("active", params.Active),
	)
	options.Fields = categoryFields

	records, err := tools.QueryRecords(ctx, gw, categoryTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("catalog_categories", core.ShapeList(records, categoryFields), "catalog categories"), nil
}

func createCatalogCategory(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateCategoryParams(raw)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"title": params.Title}
	if params.Description != "" {
		payload["description"] = params.Description
	}

	created, err := tools.CreateRecord(ctx, gw, categoryTable, payload)
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("catalog_category", core.ShapeItem(created, categoryFields), "created catalog category "+params.Title), nil
}

func updateCatalogCategory(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateCategoryParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, categoryTable, "title", params.CategoryID, "catalog category")
	if err != nil {
		return nil, err
	}
	updated, err := tools.UpdateRecord(ctx, gw, categoryTable, sysID, tools.MergeFields(map[string]any{}, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("catalog_category", core.ShapeItem(updated, categoryFields), "updated catalog category "+params.CategoryID), nil
}
