package build

// Position of a build within the pipeline.
//
// The pipeline is strictly linear: each phase admits exactly one successor,
// and any step failure moves the build to the terminal failed phase. There
// are no back-transitions; a new build is required to change any input.
type phase int

const (
	phaseEmpty phase = iota
	phaseBaseSelected
	phaseWorkdirSet
	phaseDepsInstalled
	phaseSourceCopied
	phasePortDeclared
	phaseEntrySet
	phaseFinalized
	phaseFailed
)

var phaseNames = map[phase]string{
	phaseEmpty:         "empty",
	phaseBaseSelected:  "base-selected",
	phaseWorkdirSet:    "working-directory-set",
	phaseDepsInstalled: "dependencies-installed",
	phaseSourceCopied:  "source-copied",
	phasePortDeclared:  "port-declared",
	phaseEntrySet:      "entry-command-set",
	phaseFinalized:     "finalized",
	phaseFailed:        "failed",
}

func (p phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Reports whether the build can make no further progress.
func (p phase) terminal() bool {
	return p == phaseFinalized || p == phaseFailed
}
