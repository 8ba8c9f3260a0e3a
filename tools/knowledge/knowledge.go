// Package knowledge exposes knowledge-base article operations. Article
// titles map onto the backend's short_description column and bodies onto
// text.
package knowledge

import (
	"context"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools"
)

const articleTable = "kb_knowledge"

var articleFields = []string{
	"sys_id", "number", "short_description", "text", "workflow_state",
	"kb_knowledge_base", "kb_category", "author", "sys_updated_on",
}

type ListArticlesParams struct {
	Options core.ListOptions
	Search  string
}

func newListArticlesParams(raw map[string]any) (ListArticlesParams, error) {
	reader := core.NewParamReader(raw)
	params := ListArticlesParams{
		Options: core.ReadListOptions(reader),
		Search:  reader.String("search"),
	}
	return params, reader.Err()
}

type GetArticleParams struct {
	ArticleID string
}

func newGetArticleParams(raw map[string]any) (GetArticleParams, error) {
	reader := core.NewParamReader(raw)
	params := GetArticleParams{ArticleID: reader.RequiredString("article_id")}
	return params, reader.Err()
}

type CreateArticleParams struct {
	Title         string
	Content       string
	KnowledgeBase string
	Category      string
}

func newCreateArticleParams(raw map[string]any) (CreateArticleParams, error) {
	reader := core.NewParamReader(raw)
	params := CreateArticleParams{
		Title:         reader.RequiredString("title"),
		Content:       reader.RequiredString("content"),
		KnowledgeBase: reader.String("knowledge_base"),
		Category:      reader.String("category"),
	}
	return params, reader.Err()
}

type UpdateArticleParams struct {
	ArticleID string
	Title     string
	Content   string
	Fields    map[string]any
}

func newUpdateArticleParams(raw map[string]any) (UpdateArticleParams, error) {
	reader := core.NewParamReader(raw)
	params := UpdateArticleParams{
		ArticleID: reader.RequiredString("article_id"),
		Title:     reader.String("title"),
		Content:   reader.String("content"),
	}
	params.Fields = reader.Rest()
	return params, reader.Err()
}

// Descriptors returns the knowledge operation set for registration.
func Descriptors() []core.OperationDescriptor {
	return []core.OperationDescriptor{
		{
			Name:           "knowledge.list_articles",
			Description:    "List knowledge articles with optional free-text search",
			OptionalParams: []string{"limit", "offset", "query", "search"},
			Handler:        listArticles,
		},
		{
			Name:           "knowledge.get_article",
			Description:    "Fetch one article by number or sys_id",
			RequiredParams: []string{"article_id"},
			Handler:        getArticle,
		},
		{
			Name:           "knowledge.create_article",
			Description:    "Create a knowledge article",
			RequiredParams: []string{"title", "content"},
			OptionalParams: []string{"knowledge_base", "category"},
			Handler:        createArticle,
		},
		{
			Name:           "knowledge.update_article",
			Description:    "Update an article's title, body, or arbitrary fields",
			RequiredParams: []string{"article_id"},
			OptionalParams: []string{"title", "content"},
			Handler:        updateArticle,
		},
	}
}

func listArticles(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newListArticlesParams(raw)
	if err != nil {
		return nil, err
	}
	options := params.Options
	options.Query = core.BuildSysparmQuery(
		options.Query,
		core.LikeCondition("short_description", params.Search),
	)
	options.Fields = articleFields

	records, err := tools.QueryRecords(ctx, gw, articleTable, options)
	if err != nil {
		return nil, err
	}
	return core.ListPayload("articles", core.ShapeList(records, articleFields), "articles"), nil
}

func getArticle(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newGetArticleParams(raw)
	if err != nil {
		return nil, err
	}
	record, err := tools.FindByIdentifier(ctx, gw, articleTable, "number", params.ArticleID, "article")
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("article", core.ShapeItem(record, articleFields), ""), nil
}

func createArticle(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newCreateArticleParams(raw)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"short_description": params.Title,
		"text":              params.Content,
	}
	if params.KnowledgeBase != "" {
		payload["kb_knowledge_base"] = params.KnowledgeBase
	}
	if params.Category != "" {
		payload["kb_category"] = params.Category
	}

	created, err := tools.CreateRecord(ctx, gw, articleTable, payload)
	if err != nil {
		return nil, err
	}
	shaped := core.ShapeItem(created, articleFields)
	number, _ := shaped["number"].(string)
	return core.ItemPayload("article", shaped, "created article "+number), nil
}

func updateArticle(ctx context.Context, gw core.Gateway, raw map[string]any) (map[string]any, error) {
	params, err := newUpdateArticleParams(raw)
	if err != nil {
		return nil, err
	}
	sysID, err := tools.FindSysID(ctx, gw, articleTable, "number", params.ArticleID, "article")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{}
	if params.Title != "" {
		payload["short_description"] = params.Title
	}
	if params.Content != "" {
		payload["text"] = params.Content
	}
	updated, err := tools.UpdateRecord(ctx, gw, articleTable, sysID, tools.MergeFields(payload, params.Fields))
	if err != nil {
		return nil, err
	}
	return core.ItemPayload("article", core.ShapeItem(updated, articleFields), "updated article "+params.ArticleID), nil
}
