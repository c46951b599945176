package models

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/danmuck/boincctl/internal/testutil/testlog"
)

// parse wraps raw markup in a document and returns its root element.
func parse(t *testing.T, raw string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(raw); err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	root := doc.Root()
	if root == nil {
		t.Fatalf("no root in %q", raw)
	}
	return root
}

func TestVersionInfoRoundTrip(t *testing.T) {
	testlog.Start(t)
	want := VersionInfo{Major: Int(7), Minor: Int(16), Release: Int(16), Name: Str("client")}
	got := DecodeVersionInfo(want.Encode("server_version"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionInfoPartialFieldsStayAbsent(t *testing.T) {
	testlog.Start(t)
	got := DecodeVersionInfo(parse(t, "<server_version><major>7</major></server_version>"))
	want := VersionInfo{Major: Int(7)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDuplicateSingularTagLastWins(t *testing.T) {
	testlog.Start(t)
	root := parse(t, "<server_version><major>7</major><major>8</major></server_version>")
	got := DecodeVersionInfo(root)
	if got.Major == nil || *got.Major != 8 {
		t.Fatalf("expected last duplicate to win, got %+v", got.Major)
	}
}

func TestDecodeIgnoresUnknownTags(t *testing.T) {
	testlog.Start(t)
	root := parse(t, "<server_version><major>7</major><shiny_new_field>x</shiny_new_field></server_version>")
	want := VersionInfo{Major: Int(7)}
	if diff := cmp.Diff(want, DecodeVersionInfo(root)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnparsableFieldStaysAbsent(t *testing.T) {
	testlog.Start(t)
	root := parse(t, "<server_version><major>seven</major><minor>16</minor></server_version>")
	got := DecodeVersionInfo(root)
	if got.Major != nil {
		t.Fatalf("unparsable field must stay absent, got %d", *got.Major)
	}
	if got.Minor == nil || *got.Minor != 16 {
		t.Fatalf("sibling field must survive, got %+v", got.Minor)
	}
}

func TestHostInfoRoundTrip(t *testing.T) {
	testlog.Start(t)
	want := HostInfo{
		TZShift:    Int(3600),
		DomainName: Str("workstation"),
		NCPUs:      Int(8),
		CPUVendor:  Str("GenuineIntel"),
		FloatOps:   Float(3.2e9),
		MemBytes:   Float(1.6e10),
		DiskFree:   Float(5.0e11),
		OSName:     Str("Linux"),

		VMExtensionsDisabled: Bool(false),
	}
	got := DecodeHostInfo(want.Encode())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectInfoRoundTrip(t *testing.T) {
	testlog.Start(t)
	want := ProjectInfo{
		Name:      Str("Rosetta@home"),
		URL:       Str("https://boinc.bakerlab.org/rosetta/"),
		Platforms: []string{"x86_64-pc-linux-gnu", "windows_x86_64"},
	}
	got := DecodeProjectInfo(want.Encode())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectInfoEmptyPlatformsBlock(t *testing.T) {
	testlog.Start(t)
	got := DecodeProjectInfo(parse(t, "<project><name>x</name><platforms></platforms></project>"))
	if got.Platforms == nil || len(got.Platforms) != 0 {
		t.Fatalf("empty block must decode to empty slice, got %#v", got.Platforms)
	}
}

func TestAccountManagerInfoFlags(t *testing.T) {
	testlog.Start(t)
	root := parse(t, "<acct_mgr_info><acct_mgr_url>https://bam.boincstats.com/</acct_mgr_url><have_credentials/></acct_mgr_info>")
	got := DecodeAccountManagerInfo(root)
	want := AccountManagerInfo{
		URL:             Str("https://bam.boincstats.com/"),
		HaveCredentials: Bool(true),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// A false flag is encoded by omission, so the encode side only
	// round-trips true flags.
	encoded := AccountManagerInfo{HaveCredentials: Bool(false)}.Encode()
	if encoded.SelectElement("have_credentials") != nil {
		t.Fatalf("false flag must not be emitted")
	}
}

func TestMessageBodyCData(t *testing.T) {
	testlog.Start(t)
	want := Message{
		ProjectName: Str("climateprediction.net"),
		Priority:    Int(1),
		MsgNumber:   Int(42),
		Body:        Str("Scheduler request completed: got 1 new tasks <ok>"),
		Timestamp:   Int(1693231200),
	}
	got := DecodeMessage(want.Encode())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskResultNestedActiveTask(t *testing.T) {
	testlog.Start(t)
	want := TaskResult{
		Name:       Str("wu_1693231200_0"),
		State:      Int(2),
		ProjectURL: Str("https://einstein.phys.uwm.edu/"),
		ActiveTask: &ActiveTask{
			ActiveTaskState: Int(1),
			SchedulerState:  Int(2),
			PID:             Uint(4117),
			FractionDone:    Float(0.25),
			ElapsedTime:     Float(1200.5),
		},
	}
	got := DecodeTaskResult(want.Encode())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if ProcessState(*got.ActiveTask.ActiveTaskState) != ProcessExecuting {
		t.Fatalf("unexpected process state %d", *got.ActiveTask.ActiveTaskState)
	}
	if CpuSched(*got.ActiveTask.SchedulerState) != CpuSchedScheduled {
		t.Fatalf("unexpected scheduler state %d", *got.ActiveTask.SchedulerState)
	}
}

func TestTaskResultWithoutActiveTask(t *testing.T) {
	testlog.Start(t)
	got := DecodeTaskResult(parse(t, "<result><name>wu_0</name><state>5</state></result>"))
	if got.ActiveTask != nil {
		t.Fatalf("no active_task block, got %+v", got.ActiveTask)
	}
	if got.State == nil || ResultState(*got.State) != ResultFilesUploaded {
		t.Fatalf("unexpected state %+v", got.State)
	}
}
