// Package client is the per-operation facade over the transport. It
// composes record codecs, readiness polling and reply classification;
// it adds no protocol logic of its own.
package client

import (
	"context"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/danmuck/boincctl/internal/config"
	"github.com/danmuck/boincctl/internal/models"
	"github.com/danmuck/boincctl/internal/observability"
	"github.com/danmuck/boincctl/internal/protocol"
	"github.com/danmuck/boincctl/internal/transport"
)

// Client issues GUI RPC operations against one daemon endpoint.
type Client struct {
	tr *transport.Transport
}

// Dial starts a background connect to the endpoint. The handshake
// result surfaces on the first operation.
func Dial(ep config.Endpoint) *Client {
	return New(transport.Dial(ep.Addr(), ep.Password))
}

// New wraps an existing transport.
func New(tr *transport.Transport) *Client {
	return &Client{tr: tr}
}

func (c *Client) Close() error { return c.tr.Close() }

// do runs one operation end to end: await readiness, invoke, classify
// the reply's control elements. It returns the reply children and
// whether a <success/> marker was present.
func (c *Client) do(ctx context.Context, op *etree.Element) ([]*etree.Element, bool, error) {
	start := time.Now()
	children, success, err := c.doUnrecorded(ctx, op)
	observability.RecordRPC(op.Tag, protocol.KindLabel(err), time.Since(start))
	return children, success, err
}

func (c *Client) doUnrecorded(ctx context.Context, op *etree.Element) ([]*etree.Element, bool, error) {
	if err := c.tr.AwaitReady(ctx); err != nil {
		return nil, false, err
	}
	children, err := c.tr.Call(ctx, []*etree.Element{op})
	if err != nil {
		return nil, false, err
	}
	success, err := protocol.VerifyReply(children)
	if err != nil {
		return nil, false, err
	}
	return children, success, nil
}

// getObject fetches one record identified by objectTag from a
// verified reply. A verified reply without the tag is "object not
// found", distinct from success-with-payload.
func getObject[T any](c *Client, ctx context.Context, op *etree.Element, objectTag string, decode func(*etree.Element) T) (T, error) {
	var zero T
	children, _, err := c.do(ctx, op)
	if err != nil {
		return zero, err
	}
	for _, node := range children {
		if node.Tag == objectTag {
			return decode(node), nil
		}
	}
	return zero, protocol.New(protocol.KindDataParse, "object not found")
}

// getList fetches the itemTag children of a listTag block.
func getList[T any](c *Client, ctx context.Context, op *etree.Element, listTag, itemTag string, decode func(*etree.Element) T) ([]T, error) {
	children, _, err := c.do(ctx, op)
	if err != nil {
		return nil, err
	}
	var out []T
	found := false
	for _, node := range children {
		if node.Tag != listTag {
			continue
		}
		found = true
		for _, item := range node.SelectElements(itemTag) {
			out = append(out, decode(item))
		}
	}
	if !found {
		return nil, protocol.New(protocol.KindDataParse, "objects not found")
	}
	return out, nil
}

// ExchangeVersions announces this client's version and returns the
// daemon's.
func (c *Client) ExchangeVersions(ctx context.Context, info models.VersionInfo) (models.VersionInfo, error) {
	op := info.Encode("exchange_versions")
	return getObject(c, ctx, op, "server_version", models.DecodeVersionInfo)
}

// GetHostInfo reports the daemon host's hardware and OS description.
func (c *Client) GetHostInfo(ctx context.Context) (models.HostInfo, error) {
	return getObject(c, ctx, etree.NewElement("get_host_info"), "host_info", models.DecodeHostInfo)
}

// GetProjects lists every project the daemon knows about.
func (c *Client) GetProjects(ctx context.Context) ([]models.ProjectInfo, error) {
	op := etree.NewElement("get_all_projects_list")
	return getList(c, ctx, op, "projects", "project", models.DecodeProjectInfo)
}

// GetMessages returns daemon log messages with seqno greater than the
// given one.
func (c *Client) GetMessages(ctx context.Context, seqno int64) ([]models.Message, error) {
	op := protocol.NewTextElement("get_messages", strconv.FormatInt(seqno, 10))
	return getList(c, ctx, op, "msgs", "msg", models.DecodeMessage)
}

// GetResults lists task results, optionally only currently-active
// ones.
func (c *Client) GetResults(ctx context.Context, activeOnly bool) ([]models.TaskResult, error) {
	op := etree.NewElement("get_results")
	if activeOnly {
		op.CreateElement("active_only").SetText("1")
	}
	return getList(c, ctx, op, "results", "result", models.DecodeTaskResult)
}

// GetAccountManagerInfo describes the attached account manager.
func (c *Client) GetAccountManagerInfo(ctx context.Context) (models.AccountManagerInfo, error) {
	op := etree.NewElement("acct_mgr_info")
	return getObject(c, ctx, op, "acct_mgr_info", models.DecodeAccountManagerInfo)
}

// GetAccountManagerRPCStatus polls the outcome of a pending account
// manager attach.
func (c *Client) GetAccountManagerRPCStatus(ctx context.Context) (int, error) {
	children, _, err := c.do(ctx, etree.NewElement("acct_mgr_rpc_poll"))
	if err != nil {
		return 0, err
	}
	// Duplicate reply nodes follow the usual rule: the last error_num
	// across all of them wins.
	code, found := 0, false
	for _, node := range children {
		if node.Tag != "acct_mgr_rpc_reply" {
			continue
		}
		if v, ok := lastErrorNum(node); ok {
			code, found = v, true
		}
	}
	if !found {
		return 0, protocol.New(protocol.KindDataParse, "acct_mgr_rpc_reply node not found")
	}
	return code, nil
}

func lastErrorNum(node *etree.Element) (int, bool) {
	found := false
	v := 0
	for _, child := range node.SelectElements("error_num") {
		if n, ok := protocol.IntContent(child); ok {
			v, found = int(n), true
		}
	}
	return v, found
}

// ConnectToAccountManager starts an account manager attach. The
// returned flag mirrors the daemon's <success/> marker; completion is
// observed via GetAccountManagerRPCStatus.
func (c *Client) ConnectToAccountManager(ctx context.Context, url, name, password string) (bool, error) {
	op := etree.NewElement("acct_mgr_rpc")
	op.CreateElement("url").SetText(url)
	op.CreateElement("name").SetText(name)
	op.CreateElement("password").SetText(password)
	_, success, err := c.do(ctx, op)
	return success, err
}

// SetMode adjusts one component's run mode for a duration in seconds;
// zero means permanent.
func (c *Client) SetMode(ctx context.Context, component models.Component, mode models.RunMode, duration float64) error {
	op := etree.NewElement("set_" + component.WireName() + "_mode")
	op.CreateElement("duration").SetText(strconv.FormatFloat(duration, 'f', -1, 64))
	op.CreateElement(mode.WireName())
	_, _, err := c.do(ctx, op)
	return err
}

// SetLanguage sets the daemon's notice translation language.
func (c *Client) SetLanguage(ctx context.Context, language string) error {
	op := etree.NewElement("set_language")
	op.CreateElement("language").SetText(language)
	_, _, err := c.do(ctx, op)
	return err
}
