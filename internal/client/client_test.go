package client

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/boincctl/internal/models"
	"github.com/danmuck/boincctl/internal/protocol"
	"github.com/danmuck/boincctl/internal/testutil/daemontest"
	"github.com/danmuck/boincctl/internal/testutil/testlog"
	"github.com/danmuck/boincctl/internal/transport"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// dialOpen connects to the fake daemon without authentication.
func dialOpen(t *testing.T, d *daemontest.Daemon) *Client {
	t.Helper()
	c := New(transport.Dial(d.Addr(), ""))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func reply(body string) []byte {
	return []byte("<boinc_gui_rpc_reply>" + body + "</boinc_gui_rpc_reply>")
}

func TestExchangeVersions(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		for _, fragment := range []string{"<exchange_versions>", "<major>7</major>", "<minor>35</minor>"} {
			if !bytes.Contains(request, []byte(fragment)) {
				t.Errorf("request missing %q: %s", fragment, request)
			}
		}
		return reply("<server_version><major>7</major><minor>16</minor><release>16</release></server_version>")
	})

	got, err := dialOpen(t, d).ExchangeVersions(testCtx(t), models.VersionInfo{
		Major: models.Int(7), Minor: models.Int(35), Release: models.Int(0),
	})
	if err != nil {
		t.Fatalf("exchange versions: %v", err)
	}
	want := models.VersionInfo{Major: models.Int(7), Minor: models.Int(16), Release: models.Int(16)}
	if *got.Major != *want.Major || *got.Minor != *want.Minor || *got.Release != *want.Release {
		t.Fatalf("got %+v", got)
	}
}

func TestUnauthenticatedQueryOnProtectedDaemon(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		// A protected daemon refuses everything outside the handshake.
		return reply("<unauthorized/>")
	})

	_, err := dialOpen(t, d).GetHostInfo(testCtx(t))
	if kind, ok := protocol.KindOf(err); !ok || kind != protocol.KindAuth {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestGetObjectMissingPayload(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		return reply("<success/>")
	})

	_, err := dialOpen(t, d).GetHostInfo(testCtx(t))
	if kind, ok := protocol.KindOf(err); !ok || kind != protocol.KindDataParse {
		t.Fatalf("expected data parse failure, got %v", err)
	}
}

func TestGetProjects(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		if !bytes.Contains(request, []byte("<get_all_projects_list/>")) {
			t.Errorf("unexpected request: %s", request)
		}
		return reply(`<projects>
			<project><name>one</name><url>https://one.example/</url></project>
			<project><name>two</name></project>
		</projects>`)
	})

	projects, err := dialOpen(t, d).GetProjects(testCtx(t))
	if err != nil {
		t.Fatalf("get projects: %v", err)
	}
	if len(projects) != 2 || *projects[0].Name != "one" || *projects[1].Name != "two" {
		t.Fatalf("got %+v", projects)
	}
}

func TestGetMessagesCarriesSeqno(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		if !bytes.Contains(request, []byte("<get_messages>11</get_messages>")) {
			t.Errorf("unexpected request: %s", request)
		}
		return reply("<msgs><msg><project>p</project><seqno>12</seqno><body><![CDATA[hi <there>]]></body></msg></msgs>")
	})

	msgs, err := dialOpen(t, d).GetMessages(testCtx(t), 11)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 1 || *msgs[0].MsgNumber != 12 || *msgs[0].Body != "hi <there>" {
		t.Fatalf("got %+v", msgs)
	}
}

func TestGetResultsActiveOnly(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		if !bytes.Contains(request, []byte("<active_only>1</active_only>")) {
			t.Errorf("active_only flag missing: %s", request)
		}
		return reply(`<results><result>
			<name>wu_0</name><state>2</state>
			<active_task><fraction_done>0.5</fraction_done></active_task>
		</result></results>`)
	})

	results, err := dialOpen(t, d).GetResults(testCtx(t), true)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if len(results) != 1 || results[0].ActiveTask == nil || *results[0].ActiveTask.FractionDone != 0.5 {
		t.Fatalf("got %+v", results)
	}
}

func TestGetResultsEmptyListIsNotAnError(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		return reply("<results></results>")
	})

	results, err := dialOpen(t, d).GetResults(testCtx(t), false)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %+v", results)
	}
}

func TestConnectToAccountManagerAlreadyAttached(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		for _, fragment := range []string{"<acct_mgr_rpc>", "<url>https://bam.example/</url>", "<name>user</name>"} {
			if !bytes.Contains(request, []byte(fragment)) {
				t.Errorf("request missing %q: %s", fragment, request)
			}
		}
		return reply("<error>Already attached to project</error>")
	})

	_, err := dialOpen(t, d).ConnectToAccountManager(testCtx(t), "https://bam.example/", "user", "pw")
	if kind, ok := protocol.KindOf(err); !ok || kind != protocol.KindAlreadyAttached {
		t.Fatalf("expected already-attached failure, got %v", err)
	}
}

func TestAccountManagerRPCStatus(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		if !bytes.Contains(request, []byte("<acct_mgr_rpc_poll/>")) {
			t.Errorf("unexpected request: %s", request)
		}
		return reply("<acct_mgr_rpc_reply><error_num>-189</error_num></acct_mgr_rpc_reply>")
	})

	code, err := dialOpen(t, d).GetAccountManagerRPCStatus(testCtx(t))
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if code != -189 {
		t.Fatalf("got %d", code)
	}
}

func TestAccountManagerRPCStatusDuplicateRepliesLastWins(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		return reply("<acct_mgr_rpc_reply><error_num>1</error_num></acct_mgr_rpc_reply>" +
			"<acct_mgr_rpc_reply><error_num>0</error_num></acct_mgr_rpc_reply>")
	})

	code, err := dialOpen(t, d).GetAccountManagerRPCStatus(testCtx(t))
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if code != 0 {
		t.Fatalf("last error_num must win, got %d", code)
	}
}

func TestSetModeRequestShape(t *testing.T) {
	testlog.Start(t)
	var captured string
	d := daemontest.Start(t, func(request []byte) []byte {
		captured = string(request)
		return reply("<success/>")
	})

	err := dialOpen(t, d).SetMode(testCtx(t), models.ComponentGPU, models.RunModeNever, 3600)
	if err != nil {
		t.Fatalf("set mode: %v", err)
	}
	for _, fragment := range []string{"<set_gpu_mode>", "<duration>3600</duration>", "<never/>"} {
		if !strings.Contains(captured, fragment) {
			t.Fatalf("request missing %q: %s", fragment, captured)
		}
	}
}

func TestSetLanguage(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		if !bytes.Contains(request, []byte("<language>de</language>")) {
			t.Errorf("unexpected request: %s", request)
		}
		return reply("<success/>")
	})
	if err := dialOpen(t, d).SetLanguage(testCtx(t), "de"); err != nil {
		t.Fatalf("set language: %v", err)
	}
}

func TestDaemonStatusError(t *testing.T) {
	testlog.Start(t)
	d := daemontest.Start(t, func(request []byte) []byte {
		return reply("<status>-112</status>")
	})

	_, err := dialOpen(t, d).GetHostInfo(testCtx(t))
	code, ok := protocol.StatusCode(err)
	if !ok || code != -112 {
		t.Fatalf("expected status -112, got %v", err)
	}
}
