// Package registry is the client for the TeamDynamix asset registry.
//
// It speaks the registry's wire format and translates between it and the
// records in pkg/assets. Numeric attribute IDs never leave this package:
// callers see attribute kinds only.
package registry

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/assetsync/internal/transport"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/logging"
)

// Service is the name the registry carries in errors and logs.
const Service = "registry"

// tokenTTL is how long a login token is reused. Registry tokens are valid
// for 24 hours.
const tokenTTL = 12 * time.Hour

// Config configures the registry client.
type Config struct {
	BaseURL string
	// AppID is the asset application ID. When set, asset endpoints are
	// addressed as {AppID}/assets/...
	AppID string

	// Either Username/Password or BEID/WebServicesKey must be set.
	Username       string
	Password       string
	BEID           string
	WebServicesKey string

	Attributes          AttributeIDs
	ModelAgeAttributeID int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.NewConfigError(Service, "base url is required", nil)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return errors.NewConfigError(Service, "invalid base url", err)
	}
	hasUser := c.Username != "" && c.Password != ""
	hasAdmin := c.BEID != "" && c.WebServicesKey != ""
	if !hasUser && !hasAdmin {
		return errors.NewConfigError(Service, "username/password or beid/web_services_key is required", nil)
	}
	return nil
}

// Client is a registry API client.
type Client struct {
	cfg        Config
	attrs      AttributeIDs
	modelAgeID int

	api   *transport.Client
	login *transport.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
	now      func() time.Time
}

// New creates a registry client. Transport options are applied to both the
// login and API clients.
func New(cfg Config, opts ...transport.Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		attrs:      cfg.Attributes,
		modelAgeID: cfg.ModelAgeAttributeID,
		now:        time.Now,
	}
	if c.attrs == nil {
		c.attrs = DefaultAttributeIDs()
	}
	if c.modelAgeID == 0 {
		c.modelAgeID = constants.DefaultModelAgeAttributeID
	}

	base := append([]transport.Option{
		transport.WithBaseURL(cfg.BaseURL),
		transport.WithService(Service),
	}, opts...)

	c.login = transport.New(&transport.NoAuth{}, base...)
	c.api = transport.New(&transport.TokenAuth{
		Service: Service,
		Method:  c.authMethod(),
		Source:  c.bearerToken,
	}, base...)

	return c, nil
}

func (c *Client) authMethod() string {
	if c.cfg.BEID != "" {
		return "admin"
	}
	return "password"
}

// bearerToken returns the cached login token, logging in when it is missing
// or stale.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExp) {
		return c.token, nil
	}

	var path string
	var body any
	if c.cfg.BEID != "" {
		path = "auth/loginadmin"
		body = map[string]string{"BEID": c.cfg.BEID, "WebServicesKey": c.cfg.WebServicesKey}
	} else {
		path = "auth"
		body = map[string]string{"UserName": c.cfg.Username, "Password": c.cfg.Password}
	}

	data, err := c.login.SendRaw(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}

	token := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if token == "" {
		return "", errors.New("empty token returned")
	}

	c.token = token
	c.tokenExp = c.now().Add(tokenTTL)
	logging.Ctx(ctx).Debug().Str("method", c.authMethod()).Msg("logged in to registry")
	return token, nil
}

func (c *Client) assetPath(parts ...string) string {
	path := "assets"
	if c.cfg.AppID != "" {
		path = c.cfg.AppID + "/assets"
	}
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// GetAssetsReport fetches an asset report with its rows.
func (c *Client) GetAssetsReport(ctx context.Context, reportID int) ([]assets.RegistryRecord, error) {
	rep, err := c.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	out := make([]assets.RegistryRecord, 0, len(rep.DataRows))
	for _, r := range rep.DataRows {
		out = append(out, c.toRecord(r))
	}
	return out, nil
}

// GetModelAgeReport fetches the product-model age report.
func (c *Client) GetModelAgeReport(ctx context.Context, reportID int) ([]assets.ModelAgeRow, error) {
	rep, err := c.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	out := make([]assets.ModelAgeRow, 0, len(rep.DataRows))
	for _, r := range rep.DataRows {
		out = append(out, toModelAge(r))
	}
	return out, nil
}

func (c *Client) getReport(ctx context.Context, reportID int) (*report, error) {
	path := transport.WithQuery("reports/"+itoa(reportID), url.Values{"withData": {"true"}})
	var rep report
	if err := c.api.GetJSON(ctx, path, &rep); err != nil {
		return nil, errors.WrapResource("fetch", "report", itoa(reportID), err)
	}
	return &rep, nil
}

// GetAsset fetches a full asset record.
func (c *Client) GetAsset(ctx context.Context, id int) (assets.RegistryRecord, error) {
	data, err := c.api.SendRaw(ctx, http.MethodGet, c.assetPath(itoa(id)), nil)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapResource("fetch", "asset", itoa(id), err)
	}
	rec, err := c.decodeAsset(data)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapParse("json", "asset "+itoa(id), err)
	}
	return rec, nil
}

// CreateAsset creates an asset and returns the stored record, which carries
// the assigned ID.
func (c *Client) CreateAsset(ctx context.Context, rec assets.RegistryRecord) (assets.RegistryRecord, error) {
	body, err := c.encodeAsset(rec)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapParse("json", "asset", err)
	}
	data, err := c.api.SendRaw(ctx, http.MethodPost, c.assetPath(), body)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapResource("create", "asset", rec.Name, err)
	}
	created, err := c.decodeAsset(data)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapParse("json", "created asset", err)
	}
	return created, nil
}

// EditAsset writes a whole asset record. The registry has no partial update,
// so rec should come from GetAsset with the patch applied.
func (c *Client) EditAsset(ctx context.Context, id int, rec assets.RegistryRecord) (assets.RegistryRecord, error) {
	rec.ID = id
	body, err := c.encodeAsset(rec)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapParse("json", "asset "+itoa(id), err)
	}
	data, err := c.api.SendRaw(ctx, http.MethodPost, c.assetPath(itoa(id)), body)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapResource("update", "asset", itoa(id), err)
	}
	if len(data) == 0 {
		return rec, nil
	}
	updated, err := c.decodeAsset(data)
	if err != nil {
		return assets.RegistryRecord{}, errors.WrapParse("json", "asset "+itoa(id), err)
	}
	return updated, nil
}

// GetVendors lists registry vendors.
func (c *Client) GetVendors(ctx context.Context) ([]assets.Vendor, error) {
	var wire []vendor
	if err := c.api.GetJSON(ctx, c.assetPath("vendors"), &wire); err != nil {
		return nil, errors.WrapResource("fetch", "vendors", "", err)
	}
	out := make([]assets.Vendor, 0, len(wire))
	for _, v := range wire {
		out = append(out, assets.Vendor{ID: v.ID, Name: v.Name})
	}
	return out, nil
}

// GetProductModels lists registry product models.
func (c *Client) GetProductModels(ctx context.Context) ([]assets.ProductModel, error) {
	var wire []productModel
	if err := c.api.GetJSON(ctx, c.assetPath("models"), &wire); err != nil {
		return nil, errors.WrapResource("fetch", "product models", "", err)
	}
	out := make([]assets.ProductModel, 0, len(wire))
	for _, m := range wire {
		out = append(out, assets.ProductModel{ID: m.ID, Name: m.Name, ManufacturerName: m.ManufacturerName})
	}
	return out, nil
}

// GetUsers lists active people in the registry directory.
func (c *Client) GetUsers(ctx context.Context) ([]assets.User, error) {
	path := transport.WithQuery("people/userlist", url.Values{"isActive": {"true"}})
	var wire []user
	if err := c.api.GetJSON(ctx, path, &wire); err != nil {
		return nil, errors.WrapResource("fetch", "users", "", err)
	}
	out := make([]assets.User, 0, len(wire))
	for _, u := range wire {
		out = append(out, u.toUser())
	}
	return out, nil
}

// GetProductModel fetches a full product model, including its model-age
// attribute.
func (c *Client) GetProductModel(ctx context.Context, id int) (assets.ProductModel, error) {
	data, err := c.api.SendRaw(ctx, http.MethodGet, c.assetPath("models", itoa(id)), nil)
	if err != nil {
		return assets.ProductModel{}, errors.WrapResource("fetch", "product model", itoa(id), err)
	}
	m, err := c.decodeModel(data)
	if err != nil {
		return assets.ProductModel{}, errors.WrapParse("json", "product model "+itoa(id), err)
	}
	return m, nil
}

// EditProductModel writes a whole product model.
func (c *Client) EditProductModel(ctx context.Context, m assets.ProductModel) (assets.ProductModel, error) {
	body, err := c.encodeModel(m)
	if err != nil {
		return assets.ProductModel{}, errors.WrapParse("json", "product model "+itoa(m.ID), err)
	}
	data, err := c.api.SendRaw(ctx, http.MethodPut, c.assetPath("models", itoa(m.ID)), body)
	if err != nil {
		return assets.ProductModel{}, errors.WrapResource("update", "product model", itoa(m.ID), err)
	}
	if len(data) == 0 {
		return m, nil
	}
	updated, err := c.decodeModel(data)
	if err != nil {
		return assets.ProductModel{}, errors.WrapParse("json", "product model "+itoa(m.ID), err)
	}
	return updated, nil
}
