package models

import "github.com/beevik/etree"

// Pointer constructors for building records with present fields.
func Int(v int64) *int64       { return &v }
func Uint(v uint64) *uint64    { return &v }
func Float(v float64) *float64 { return &v }
func Str(v string) *string     { return &v }
func Bool(v bool) *bool        { return &v }

// VersionInfo is the version block exchanged with the daemon. It
// decodes from both <server_version> and <exchange_versions>.
type VersionInfo struct {
	Major   *int64  `json:"major,omitempty"`
	Minor   *int64  `json:"minor,omitempty"`
	Release *int64  `json:"release,omitempty"`
	Name    *string `json:"name,omitempty"`
}

func DecodeVersionInfo(e *etree.Element) VersionInfo {
	return VersionInfo{
		Major:   childInt(e, "major"),
		Minor:   childInt(e, "minor"),
		Release: childInt(e, "release"),
		Name:    childString(e, "name"),
	}
}

// Encode builds the version block under the given tag; requests use
// "exchange_versions".
func (v VersionInfo) Encode(tag string) *etree.Element {
	e := etree.NewElement(tag)
	addInt(e, "major", v.Major)
	addInt(e, "minor", v.Minor)
	addInt(e, "release", v.Release)
	addString(e, "name", v.Name)
	return e
}

// HostInfo describes the machine the daemon runs on.
type HostInfo struct {
	TZShift    *int64  `json:"tz_shift,omitempty"`
	DomainName *string `json:"domain_name,omitempty"`
	SerialNum  *string `json:"serialnum,omitempty"`
	IPAddr     *string `json:"ip_addr,omitempty"`
	HostCPID   *string `json:"host_cpid,omitempty"`

	NCPUs                  *int64   `json:"p_ncpus,omitempty"`
	CPUVendor              *string  `json:"p_vendor,omitempty"`
	CPUModel               *string  `json:"p_model,omitempty"`
	CPUFeatures            *string  `json:"p_features,omitempty"`
	FloatOps               *float64 `json:"p_fpops,omitempty"`
	IntOps                 *float64 `json:"p_iops,omitempty"`
	MemBandwidth           *float64 `json:"p_membw,omitempty"`
	Calculated             *float64 `json:"p_calculated,omitempty"`
	VMExtensionsDisabled   *bool    `json:"p_vm_extensions_disabled,omitempty"`

	MemBytes *float64 `json:"m_nbytes,omitempty"`
	MemCache *float64 `json:"m_cache,omitempty"`
	MemSwap  *float64 `json:"m_swap,omitempty"`

	DiskTotal *float64 `json:"d_total,omitempty"`
	DiskFree  *float64 `json:"d_free,omitempty"`

	OSName      *string `json:"os_name,omitempty"`
	OSVersion   *string `json:"os_version,omitempty"`
	ProductName *string `json:"product_name,omitempty"`

	MACAddress        *string `json:"mac_address,omitempty"`
	VirtualboxVersion *string `json:"virtualbox_version,omitempty"`
}

func DecodeHostInfo(e *etree.Element) HostInfo {
	return HostInfo{
		TZShift:    childInt(e, "timezone"),
		DomainName: childString(e, "domain_name"),
		SerialNum:  childString(e, "serialnum"),
		IPAddr:     childString(e, "ip_addr"),
		HostCPID:   childString(e, "host_cpid"),

		NCPUs:                childInt(e, "p_ncpus"),
		CPUVendor:            childString(e, "p_vendor"),
		CPUModel:             childString(e, "p_model"),
		CPUFeatures:          childString(e, "p_features"),
		FloatOps:             childFloat(e, "p_fpops"),
		IntOps:               childFloat(e, "p_iops"),
		MemBandwidth:         childFloat(e, "p_membw"),
		Calculated:           childFloat(e, "p_calculated"),
		VMExtensionsDisabled: childBool(e, "p_vm_extensions_disabled"),

		MemBytes: childFloat(e, "m_nbytes"),
		MemCache: childFloat(e, "m_cache"),
		MemSwap:  childFloat(e, "m_swap"),

		DiskTotal: childFloat(e, "d_total"),
		DiskFree:  childFloat(e, "d_free"),

		OSName:      childString(e, "os_name"),
		OSVersion:   childString(e, "os_version"),
		ProductName: childString(e, "product_name"),

		MACAddress:        childString(e, "mac_address"),
		VirtualboxVersion: childString(e, "virtualbox_version"),
	}
}

func (h HostInfo) Encode() *etree.Element {
	e := etree.NewElement("host_info")
	addInt(e, "timezone", h.TZShift)
	addString(e, "domain_name", h.DomainName)
	addString(e, "serialnum", h.SerialNum)
	addString(e, "ip_addr", h.IPAddr)
	addString(e, "host_cpid", h.HostCPID)
	addInt(e, "p_ncpus", h.NCPUs)
	addString(e, "p_vendor", h.CPUVendor)
	addString(e, "p_model", h.CPUModel)
	addString(e, "p_features", h.CPUFeatures)
	addFloat(e, "p_fpops", h.FloatOps)
	addFloat(e, "p_iops", h.IntOps)
	addFloat(e, "p_membw", h.MemBandwidth)
	addFloat(e, "p_calculated", h.Calculated)
	addBool(e, "p_vm_extensions_disabled", h.VMExtensionsDisabled)
	addFloat(e, "m_nbytes", h.MemBytes)
	addFloat(e, "m_cache", h.MemCache)
	addFloat(e, "m_swap", h.MemSwap)
	addFloat(e, "d_total", h.DiskTotal)
	addFloat(e, "d_free", h.DiskFree)
	addString(e, "os_name", h.OSName)
	addString(e, "os_version", h.OSVersion)
	addString(e, "product_name", h.ProductName)
	addString(e, "mac_address", h.MACAddress)
	addString(e, "virtualbox_version", h.VirtualboxVersion)
	return e
}

// ProjectInfo is one entry of the all-projects list.
type ProjectInfo struct {
	Name         *string  `json:"name,omitempty"`
	Summary      *string  `json:"summary,omitempty"`
	URL          *string  `json:"url,omitempty"`
	GeneralArea  *string  `json:"general_area,omitempty"`
	SpecificArea *string  `json:"specific_area,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Home         *string  `json:"home,omitempty"`
	Platforms    []string `json:"platforms,omitempty"`
	Image        *string  `json:"image,omitempty"`
}

func DecodeProjectInfo(e *etree.Element) ProjectInfo {
	p := ProjectInfo{
		Name:         childString(e, "name"),
		Summary:      childString(e, "summary"),
		URL:          childString(e, "url"),
		GeneralArea:  childString(e, "general_area"),
		SpecificArea: childString(e, "specific_area"),
		Description:  childString(e, "description"),
		Home:         childString(e, "home"),
		Image:        childString(e, "image"),
	}
	if block, ok := lastChild(e, "platforms"); ok {
		platforms := make([]string, 0)
		for _, node := range block.SelectElements("platform") {
			if text := node.Text(); text != "" {
				platforms = append(platforms, text)
			}
		}
		p.Platforms = platforms
	}
	return p
}

func (p ProjectInfo) Encode() *etree.Element {
	e := etree.NewElement("project")
	addString(e, "name", p.Name)
	addString(e, "summary", p.Summary)
	addString(e, "url", p.URL)
	addString(e, "general_area", p.GeneralArea)
	addString(e, "specific_area", p.SpecificArea)
	addString(e, "description", p.Description)
	addString(e, "home", p.Home)
	if p.Platforms != nil {
		block := e.CreateElement("platforms")
		for _, platform := range p.Platforms {
			block.CreateElement("platform").SetText(platform)
		}
	}
	addString(e, "image", p.Image)
	return e
}

// AccountManagerInfo describes the attached account manager, if any.
// The credential and cookie fields are presence flags on the wire.
type AccountManagerInfo struct {
	URL              *string `json:"url,omitempty"`
	Name             *string `json:"name,omitempty"`
	HaveCredentials  *bool   `json:"have_credentials,omitempty"`
	CookieRequired   *bool   `json:"cookie_required,omitempty"`
	CookieFailureURL *string `json:"cookie_failure_url,omitempty"`
}

func DecodeAccountManagerInfo(e *etree.Element) AccountManagerInfo {
	return AccountManagerInfo{
		URL:              childString(e, "acct_mgr_url"),
		Name:             childString(e, "acct_mgr_name"),
		HaveCredentials:  childFlag(e, "have_credentials"),
		CookieRequired:   childFlag(e, "cookie_required"),
		CookieFailureURL: childString(e, "cookie_failure_url"),
	}
}

func (a AccountManagerInfo) Encode() *etree.Element {
	e := etree.NewElement("acct_mgr_info")
	addString(e, "acct_mgr_url", a.URL)
	addString(e, "acct_mgr_name", a.Name)
	addFlag(e, "have_credentials", a.HaveCredentials)
	addFlag(e, "cookie_required", a.CookieRequired)
	addString(e, "cookie_failure_url", a.CookieFailureURL)
	return e
}

// Message is one daemon log message. Bodies arrive as raw CDATA.
type Message struct {
	ProjectName *string `json:"project_name,omitempty"`
	Priority    *int64  `json:"priority,omitempty"`
	MsgNumber   *int64  `json:"msg_number,omitempty"`
	Body        *string `json:"body,omitempty"`
	Timestamp   *int64  `json:"timestamp,omitempty"`
}

func DecodeMessage(e *etree.Element) Message {
	return Message{
		ProjectName: childString(e, "project"),
		Priority:    childInt(e, "pri"),
		MsgNumber:   childInt(e, "seqno"),
		Body:        childString(e, "body"),
		Timestamp:   childInt(e, "time"),
	}
}

func (m Message) Encode() *etree.Element {
	e := etree.NewElement("msg")
	addString(e, "project", m.ProjectName)
	addInt(e, "pri", m.Priority)
	addInt(e, "seqno", m.MsgNumber)
	if m.Body != nil {
		e.CreateElement("body").SetCData(*m.Body)
	}
	addInt(e, "time", m.Timestamp)
	return e
}

// TaskResult is one work unit result, with the live sub-record nested
// when the task is currently scheduled.
type TaskResult struct {
	Name                      *string     `json:"name,omitempty"`
	WUName                    *string     `json:"wu_name,omitempty"`
	Platform                  *string     `json:"platform,omitempty"`
	VersionNum                *int64      `json:"version_num,omitempty"`
	PlanClass                 *string     `json:"plan_class,omitempty"`
	ProjectURL                *string     `json:"project_url,omitempty"`
	FinalCPUTime              *float64    `json:"final_cpu_time,omitempty"`
	FinalElapsedTime          *float64    `json:"final_elapsed_time,omitempty"`
	ExitStatus                *int64      `json:"exit_status,omitempty"`
	State                     *int64      `json:"state,omitempty"`
	ReportDeadline            *float64    `json:"report_deadline,omitempty"`
	ReceivedTime              *float64    `json:"received_time,omitempty"`
	EstimatedCPUTimeRemaining *float64    `json:"estimated_cpu_time_remaining,omitempty"`
	CompletedTime             *float64    `json:"completed_time,omitempty"`
	ActiveTask                *ActiveTask `json:"active_task,omitempty"`
}

func DecodeTaskResult(e *etree.Element) TaskResult {
	r := TaskResult{
		Name:                      childString(e, "name"),
		WUName:                    childString(e, "wu_name"),
		Platform:                  childString(e, "platform"),
		VersionNum:                childInt(e, "version_num"),
		PlanClass:                 childString(e, "plan_class"),
		ProjectURL:                childString(e, "project_url"),
		FinalCPUTime:              childFloat(e, "final_cpu_time"),
		FinalElapsedTime:          childFloat(e, "final_elapsed_time"),
		ExitStatus:                childInt(e, "exit_status"),
		State:                     childInt(e, "state"),
		ReportDeadline:            childFloat(e, "report_deadline"),
		ReceivedTime:              childFloat(e, "received_time"),
		EstimatedCPUTimeRemaining: childFloat(e, "estimated_cpu_time_remaining"),
		CompletedTime:             childFloat(e, "completed_time"),
	}
	if block, ok := lastChild(e, "active_task"); ok {
		active := DecodeActiveTask(block)
		r.ActiveTask = &active
	}
	return r
}

func (r TaskResult) Encode() *etree.Element {
	e := etree.NewElement("result")
	addString(e, "name", r.Name)
	addString(e, "wu_name", r.WUName)
	addString(e, "platform", r.Platform)
	addInt(e, "version_num", r.VersionNum)
	addString(e, "plan_class", r.PlanClass)
	addString(e, "project_url", r.ProjectURL)
	addFloat(e, "final_cpu_time", r.FinalCPUTime)
	addFloat(e, "final_elapsed_time", r.FinalElapsedTime)
	addInt(e, "exit_status", r.ExitStatus)
	addInt(e, "state", r.State)
	addFloat(e, "report_deadline", r.ReportDeadline)
	addFloat(e, "received_time", r.ReceivedTime)
	addFloat(e, "estimated_cpu_time_remaining", r.EstimatedCPUTimeRemaining)
	addFloat(e, "completed_time", r.CompletedTime)
	if r.ActiveTask != nil {
		e.AddChild(r.ActiveTask.Encode())
	}
	return e
}

// ActiveTask is the live execution block nested in a TaskResult.
type ActiveTask struct {
	ActiveTaskState        *int64   `json:"active_task_state,omitempty"`
	AppVersionNum          *string  `json:"app_version_num,omitempty"`
	Slot                   *uint64  `json:"slot,omitempty"`
	PID                    *uint64  `json:"pid,omitempty"`
	SchedulerState         *int64   `json:"scheduler_state,omitempty"`
	CheckpointCPUTime      *float64 `json:"checkpoint_cpu_time,omitempty"`
	FractionDone           *float64 `json:"fraction_done,omitempty"`
	CurrentCPUTime         *float64 `json:"current_cpu_time,omitempty"`
	ElapsedTime            *float64 `json:"elapsed_time,omitempty"`
	SwapSize               *float64 `json:"swap_size,omitempty"`
	WorkingSetSize         *float64 `json:"working_set_size,omitempty"`
	WorkingSetSizeSmoothed *float64 `json:"working_set_size_smoothed,omitempty"`
	PageFaultRate          *float64 `json:"page_fault_rate,omitempty"`
	BytesSent              *float64 `json:"bytes_sent,omitempty"`
	BytesReceived          *float64 `json:"bytes_received,omitempty"`
	ProgressRate           *float64 `json:"progress_rate,omitempty"`
}

func DecodeActiveTask(e *etree.Element) ActiveTask {
	return ActiveTask{
		ActiveTaskState:        childInt(e, "active_task_state"),
		AppVersionNum:          childString(e, "app_version_num"),
		Slot:                   childUint(e, "slot"),
		PID:                    childUint(e, "pid"),
		SchedulerState:         childInt(e, "scheduler_state"),
		CheckpointCPUTime:      childFloat(e, "checkpoint_cpu_time"),
		FractionDone:           childFloat(e, "fraction_done"),
		CurrentCPUTime:         childFloat(e, "current_cpu_time"),
		ElapsedTime:            childFloat(e, "elapsed_time"),
		SwapSize:               childFloat(e, "swap_size"),
		WorkingSetSize:         childFloat(e, "working_set_size"),
		WorkingSetSizeSmoothed: childFloat(e, "working_set_size_smoothed"),
		PageFaultRate:          childFloat(e, "page_fault_rate"),
		BytesSent:              childFloat(e, "bytes_sent"),
		BytesReceived:          childFloat(e, "bytes_received"),
		ProgressRate:           childFloat(e, "progress_rate"),
	}
}

func (a ActiveTask) Encode() *etree.Element {
	e := etree.NewElement("active_task")
	addInt(e, "active_task_state", a.ActiveTaskState)
	addString(e, "app_version_num", a.AppVersionNum)
	addUint(e, "slot", a.Slot)
	addUint(e, "pid", a.PID)
	addInt(e, "scheduler_state", a.SchedulerState)
	addFloat(e, "checkpoint_cpu_time", a.CheckpointCPUTime)
	addFloat(e, "fraction_done", a.FractionDone)
	addFloat(e, "current_cpu_time", a.CurrentCPUTime)
	addFloat(e, "elapsed_time", a.ElapsedTime)
	addFloat(e, "swap_size", a.SwapSize)
	addFloat(e, "working_set_size", a.WorkingSetSize)
	addFloat(e, "working_set_size_smoothed", a.WorkingSetSizeSmoothed)
	addFloat(e, "page_fault_rate", a.PageFaultRate)
	addFloat(e, "bytes_sent", a.BytesSent)
	addFloat(e, "bytes_received", a.BytesReceived)
	addFloat(e, "progress_rate", a.ProgressRate)
	return e
}
