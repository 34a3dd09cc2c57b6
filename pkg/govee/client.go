package govee

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Capability types and instances per the Govee developer API. One request
// carries exactly one capability for one device.
const (
	capOnOff = "devices.capabilities.on_off"
	capRange = "devices.capabilities.range"
	capColor = "devices.capabilities.color_setting"

	instPowerSwitch = "powerSwitch"
	instBrightness  = "brightness"
	instColorRGB    = "colorRgb"
)

// Config parameterizes the client. The URLs come from the credential store
// rather than being hardcoded, matching how the app has always treated them.
type Config struct {
	APIKey     string
	ControlURL string // POST, one capability per request
	DevicesURL string // GET, lists the account's devices
	Timeout    time.Duration
}

// Client sends device commands to the Govee cloud.
type Client struct {
	http *resty.Client
	cfg  Config
}

// New builds a client with the API key header applied to every request.
func New(cfg Config) *Client {
	r := resty.New()
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Govee-API-Key", cfg.APIKey)
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	return &Client{http: r, cfg: cfg}
}

type capability struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	Value    int    `json:"value"`
}

type controlPayload struct {
	SKU        string     `json:"sku"`
	Device     string     `json:"device"`
	Capability capability `json:"capability"`
}

type controlRequest struct {
	RequestID string         `json:"requestId"`
	Payload   controlPayload `json:"payload"`
}

// Device is one controllable device on the account.
type Device struct {
	SKU        string `json:"sku"`
	Device     string `json:"device"`
	DeviceName string `json:"deviceName"`
	Type       string `json:"type"`
}

type devicesResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Data    []Device `json:"data"`
}

// PowerSwitch turns a device on or off.
func (c *Client) PowerSwitch(ctx context.Context, sku, device string, on bool) error {
	value := 0
	if on {
		value = 1
	}
	return c.send(ctx, sku, device, capability{Type: capOnOff, Instance: instPowerSwitch, Value: value})
}

// Brightness sets a device's brightness (1-100).
func (c *Client) Brightness(ctx context.Context, sku, device string, level int) error {
	return c.send(ctx, sku, device, capability{Type: capRange, Instance: instBrightness, Value: level})
}

// ColorRGB sets a device's color as a packed 24-bit RGB value.
func (c *Client) ColorRGB(ctx context.Context, sku, device string, rgb int) error {
	return c.send(ctx, sku, device, capability{Type: capColor, Instance: instColorRGB, Value: rgb})
}

func (c *Client) send(ctx context.Context, sku, device string, cap capability) error {
	req := controlRequest{
		RequestID: uuid.New().String(),
		Payload: controlPayload{
			SKU:        sku,
			Device:     device,
			Capability: cap,
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.cfg.ControlURL)
	if err != nil {
		return fmt.Errorf("sending %s to %s: %w", cap.Instance, device, err)
	}
	if resp.IsError() {
		return fmt.Errorf("sending %s to %s: %s: %s", cap.Instance, device, resp.Status(), resp.String())
	}
	return nil
}

// Devices lists the account's devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var out devicesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(c.cfg.DevicesURL)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing devices: %s: %s", resp.Status(), resp.String())
	}
	return out.Data, nil
}
