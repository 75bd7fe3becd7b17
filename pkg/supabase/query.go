package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
)

// From 开始一个表查询
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

// QueryBuilder PostgREST 查询
type QueryBuilder struct {
	client     *Client
	table      string
	columns    string
	filters    [][2]string
	orders     []string
	limit      int
	offset     int
	single     bool
	onConflict string
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

func (q *QueryBuilder) filter(column, op string, value any) *QueryBuilder {
	q.filters = append(q.filters, [2]string{column, fmt.Sprintf("%s.%v", op, value)})
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	return q.filter(column, "eq", value)
}

func (q *QueryBuilder) Neq(column string, value any) *QueryBuilder {
	return q.filter(column, "neq", value)
}

func (q *QueryBuilder) Gte(column string, value any) *QueryBuilder {
	return q.filter(column, "gte", value)
}

func (q *QueryBuilder) Lt(column string, value any) *QueryBuilder {
	return q.filter(column, "lt", value)
}

func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	return q.filter(column, "is", value)
}

// In 值列表为空时不会命中任何行
func (q *QueryBuilder) In(column string, values []string) *QueryBuilder {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return q.filter(column, "in", "("+strings.Join(quoted, ",")+")")
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Single 期望返回单个对象，不存在时后端返回 406
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

// OnConflict 配合 Upsert 使用
func (q *QueryBuilder) OnConflict(columns string) *QueryBuilder {
	q.onConflict = columns
	return q
}

// URL 生成请求地址
func (q *QueryBuilder) URL() string {
	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		params.Add(f[0], f[1])
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		params.Set("offset", strconv.Itoa(q.offset))
	}
	if q.onConflict != "" {
		params.Set("on_conflict", q.onConflict)
	}
	u := q.client.baseURL + "/rest/v1/" + url.PathEscape(q.table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Execute 执行 SELECT 并解码到 dst
func (q *QueryBuilder) Execute(ctx context.Context, dst any) error {
	req, err := q.client.newRequest(ctx, http.MethodGet, q.URL(), nil)
	if err != nil {
		return err
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	return decode(resp, dst)
}

// Count 只取 Content-Range 里的总数
func (q *QueryBuilder) Count(ctx context.Context) (int, error) {
	q.limit = 1
	req, err := q.client.newRequest(ctx, http.MethodHead, q.URL(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")
	resp, err := q.client.do(req)
	if err != nil {
		return 0, err
	}
	cr := resp.Headers.Get("Content-Range")
	i := strings.LastIndex(cr, "/")
	if i < 0 {
		return 0, errs.Unknown("missing content-range", nil)
	}
	n, err := strconv.Atoi(cr[i+1:])
	if err != nil {
		return 0, errs.Unknown("bad content-range", err)
	}
	return n, nil
}

func (q *QueryBuilder) Insert(ctx context.Context, data any, dst any) error {
	return q.write(ctx, http.MethodPost, "return=representation", data, dst)
}

func (q *QueryBuilder) Upsert(ctx context.Context, data any, dst any) error {
	return q.write(ctx, http.MethodPost, "resolution=merge-duplicates,return=representation", data, dst)
}

func (q *QueryBuilder) Update(ctx context.Context, data any, dst any) error {
	return q.write(ctx, http.MethodPatch, "return=representation", data, dst)
}

func (q *QueryBuilder) Delete(ctx context.Context, dst any) error {
	return q.write(ctx, http.MethodDelete, "return=representation", nil, dst)
}

func (q *QueryBuilder) write(ctx context.Context, method, prefer string, data any, dst any) error {
	var body *bytes.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return errs.Unknown("encode request", err)
		}
		body = bytes.NewReader(raw)
	}
	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = q.client.newRequest(ctx, method, q.URL(), body)
	} else {
		req, err = q.client.newRequest(ctx, method, q.URL(), nil)
	}
	if err != nil {
		return err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Prefer", prefer)
	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	return decode(resp, dst)
}

func decode(resp *Response, dst any) error {
	if dst == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return errs.Unknown("decode backend response", err)
	}
	return nil
}
