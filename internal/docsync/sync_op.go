package docsync

// Phase is one step of a sync run. Phases always execute in declaration order.
type Phase uint8

var phaseNames = []string{
	"list",
	"auth",
	"delete",
	"upload",
	"pull",
}

const (
	PhaseList Phase = iota
	PhaseAuth
	PhaseDelete
	PhaseUpload
	PhasePull
)

func (p Phase) String() string {
	if int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Op is a single per-file call issued against a folder
type Op struct {
	Folder string
	Method string
	Name   string
}

const (
	MethodList     = "list"
	MethodDownload = "download"
	MethodUpload   = "upload"
	MethodDelete   = "delete"
)
