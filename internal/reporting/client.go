// Package reporting is a read-only client for the upstream reporting API,
// the HTTP face of the corporate data warehouse. Nothing in this package
// writes upstream; the client exists so field data can be looked up and
// copied into locally tracked projects.
package reporting

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldscope/vztrack/pkg/types"
)

const defaultTimeout = 15 * time.Second

// Client talks to the reporting API.
type Client struct {
	http *resty.Client
}

// NewClient returns a client rooted at baseURL, e.g.
// "https://reporting.example.com/api".
func NewClient(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// ProjectFilter narrows a project listing. Zero-valued fields are omitted
// from the query.
type ProjectFilter struct {
	Status string
	PMName string
	Region string
	Market string
}

func (f ProjectFilter) values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.PMName != "" {
		v.Set("pm_name", f.PMName)
	}
	if f.Region != "" {
		v.Set("region", f.Region)
	}
	if f.Market != "" {
		v.Set("market", f.Market)
	}
	return v
}

// Project is one upstream project record.
type Project struct {
	ProjectNumber string   `json:"project_number"`
	ProjectName   string   `json:"project_name"`
	ProjectType   string   `json:"project_type,omitempty"`
	ProjectStatus string   `json:"project_status,omitempty"`
	PMName        string   `json:"pm_name,omitempty"`
	PMEmail       string   `json:"pm_email,omitempty"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	Budget        *float64 `json:"budget,omitempty"`
	ActualCost    *float64 `json:"actual_cost,omitempty"`
	Region        string   `json:"region,omitempty"`
	Market        string   `json:"market,omitempty"`
	Priority      string   `json:"priority,omitempty"`
}

// Metrics is the upstream roll-up of change requests and provisioning
// orders for one project.
type Metrics struct {
	TotalCCRs       int     `json:"total_ccrs"`
	CompletedCCRs   int     `json:"completed_ccrs"`
	TotalOrders     int     `json:"total_orders"`
	CompletedOrders int     `json:"completed_orders"`
	BudgetVariance  float64 `json:"budget_variance"`
	EstimatedHours  float64 `json:"estimated_hours"`
	ActualHours     float64 `json:"actual_hours"`
}

// CCR is one upstream change request row.
type CCR struct {
	CCRNumber      string  `json:"ccr_number"`
	CCRStatus      string  `json:"ccr_status,omitempty"`
	CCRType        string  `json:"ccr_type,omitempty"`
	SubmitDate     string  `json:"submit_date,omitempty"`
	CompletionDate string  `json:"completion_date,omitempty"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
	ActualHours    float64 `json:"actual_hours,omitempty"`
}

// Order is one upstream provisioning order row.
type Order struct {
	OrderNumber    string `json:"order_number"`
	OrderStatus    string `json:"order_status,omitempty"`
	OrderType      string `json:"order_type,omitempty"`
	SubmitDate     string `json:"submit_date,omitempty"`
	CompletionDate string `json:"completion_date,omitempty"`
	CircuitID      string `json:"circuit_id,omitempty"`
	Location       string `json:"location,omitempty"`
}

// get runs one GET and decodes the body into out. Transport failures map to
// ErrStoreUnavailable so callers can treat an unreachable warehouse like an
// unreachable store; a 404 maps to ErrNotFound.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req := c.http.R().SetContext(ctx).SetResult(out)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%w: reporting api: %v", types.ErrStoreUnavailable, err)
	}
	if resp.StatusCode() == 404 {
		return fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	if resp.IsError() {
		return fmt.Errorf("reporting api %s: status %d", path, resp.StatusCode())
	}
	return nil
}

// Projects lists upstream projects matching the filter.
func (c *Client) Projects(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	var out []Project
	if err := c.get(ctx, "/projects/", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Project fetches one project by its project number.
func (c *Client) Project(ctx context.Context, number string) (*Project, error) {
	var out Project
	if err := c.get(ctx, "/projects/"+url.PathEscape(number), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics fetches the metrics roll-up for one project.
func (c *Client) Metrics(ctx context.Context, number string) (*Metrics, error) {
	var out Metrics
	if err := c.get(ctx, "/projects/"+url.PathEscape(number)+"/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CCRs fetches the change requests for one project.
func (c *Client) CCRs(ctx context.Context, number string) ([]CCR, error) {
	var out []CCR
	if err := c.get(ctx, "/projects/"+url.PathEscape(number)+"/ccrs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Orders fetches the provisioning orders for one project.
func (c *Client) Orders(ctx context.Context, number string) ([]Order, error) {
	var out []Order
	if err := c.get(ctx, "/projects/"+url.PathEscape(number)+"/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search looks up projects by name or project number fragment.
func (c *Client) Search(ctx context.Context, term string) ([]Project, error) {
	var out []Project
	if err := c.get(ctx, "/projects/search/"+url.PathEscape(term), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
