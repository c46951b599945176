package models

// Component selects which daemon scheduler a run mode applies to.
type Component int

const (
	ComponentCPU Component = iota
	ComponentGPU
	ComponentNetwork
)

// WireName is the fragment used in the set_<component>_mode request
// tag.
func (c Component) WireName() string {
	switch c {
	case ComponentGPU:
		return "gpu"
	case ComponentNetwork:
		return "network"
	default:
		return "run"
	}
}

// RunMode is the daemon's activity policy for one component.
type RunMode int

const (
	RunModeAlways RunMode = iota
	RunModeAuto
	RunModeNever
	RunModeRestore
)

func (m RunMode) WireName() string {
	switch m {
	case RunModeAuto:
		return "auto"
	case RunModeNever:
		return "never"
	case RunModeRestore:
		return "restore"
	default:
		return "always"
	}
}

// ResultState is a task result's lifecycle state as reported in the
// <state> element.
type ResultState int64

const (
	ResultNew ResultState = iota
	ResultFilesDownloading
	ResultFilesDownloaded
	ResultComputeError
	ResultFilesUploading
	ResultFilesUploaded
	ResultAborted
	ResultUploadFailed
)

func (s ResultState) String() string {
	switch s {
	case ResultNew:
		return "new"
	case ResultFilesDownloading:
		return "files_downloading"
	case ResultFilesDownloaded:
		return "files_downloaded"
	case ResultComputeError:
		return "compute_error"
	case ResultFilesUploading:
		return "files_uploading"
	case ResultFilesUploaded:
		return "files_uploaded"
	case ResultAborted:
		return "aborted"
	case ResultUploadFailed:
		return "upload_failed"
	default:
		return "unknown"
	}
}

// Process states reported in an active task's <active_task_state>.
// Values are daemon contract, not contiguous.
type ProcessState int64

const (
	ProcessUninitialized ProcessState = 0
	ProcessExecuting     ProcessState = 1
	ProcessAbortPending  ProcessState = 5
	ProcessQuitPending   ProcessState = 8
	ProcessSuspended     ProcessState = 9
	ProcessCopyPending   ProcessState = 10
)

func (s ProcessState) String() string {
	switch s {
	case ProcessUninitialized:
		return "uninitialized"
	case ProcessExecuting:
		return "executing"
	case ProcessAbortPending:
		return "abort_pending"
	case ProcessQuitPending:
		return "quit_pending"
	case ProcessSuspended:
		return "suspended"
	case ProcessCopyPending:
		return "copy_pending"
	default:
		return "unknown"
	}
}

// CPU scheduler states reported in an active task's
// <scheduler_state>.
type CpuSched int64

const (
	CpuSchedUninitialized CpuSched = iota
	CpuSchedPreempted
	CpuSchedScheduled
)

func (s CpuSched) String() string {
	switch s {
	case CpuSchedPreempted:
		return "preempted"
	case CpuSchedScheduled:
		return "scheduled"
	default:
		return "uninitialized"
	}
}
