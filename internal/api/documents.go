package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"gosshub/client/internal/model"
)

type ListOptions struct {
	Page  int
	Query string
}

func (o ListOptions) values() url.Values {
	query := url.Values{}
	if o.Page > 0 {
		query.Set("page", strconv.Itoa(o.Page))
	}
	if o.Query != "" {
		query.Set("query", o.Query)
	}
	return query
}

// DocumentInput is the body of a create or update. Each call records a new
// transformation.
type DocumentInput struct {
	Body string   `json:"body"`
	Tags []string `json:"tags"`
}

type CommentInput struct {
	Body     string   `json:"body"`
	UUID     string   `json:"uuid"`
	ParentID model.ID `json:"parent_id"`
}

func (c *Client) ListDocuments(ctx context.Context, opts ListOptions) ([]model.Document, error) {
	var documents []model.Document
	err := c.do(ctx, request{method: http.MethodGet, route: "/document", query: opts.values()}, &documents)
	return documents, err
}

func (c *Client) GetDocument(ctx context.Context, uuid string) (model.Document, error) {
	var document model.Document
	err := c.do(ctx, request{
		method:    http.MethodGet,
		route:     "/document",
		query:     url.Values{"uuid": {uuid}},
		authorize: true,
	}, &document)
	return document, err
}

func (c *Client) CreateDocument(ctx context.Context, input DocumentInput) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/document", authorize: true, body: input}, &msg)
	return msg, err
}

func (c *Client) UpdateDocument(ctx context.Context, uuid string, input DocumentInput) (Message, error) {
	var msg Message
	err := c.do(ctx, request{
		method:    http.MethodPut,
		route:     "/document",
		query:     url.Values{"uuid": {uuid}},
		authorize: true,
		body:      input,
	}, &msg)
	return msg, err
}

func (c *Client) PostComment(ctx context.Context, input CommentInput) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/comment", authorize: true, body: input}, &msg)
	return msg, err
}

func (c *Client) Watch(ctx context.Context, uuid string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/watch", query: url.Values{"uuid": {uuid}}, authorize: true}, &msg)
	return msg, err
}

func (c *Client) Unwatch(ctx context.Context, uuid string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodDelete, route: "/watch", query: url.Values{"uuid": {uuid}}, authorize: true}, &msg)
	return msg, err
}

func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := c.do(ctx, request{method: http.MethodGet, route: "/tag"}, &tags)
	return tags, err
}

func (c *Client) DocumentsByTag(ctx context.Context, slug string) ([]model.Document, error) {
	var documents []model.Document
	err := c.do(ctx, request{method: http.MethodGet, route: "/tag", query: url.Values{"slug": {slug}}}, &documents)
	return documents, err
}

func (c *Client) Log(ctx context.Context) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := c.do(ctx, request{method: http.MethodGet, route: "/log", authorize: true}, &entries)
	return entries, err
}
