package pipeline

// Stage is a step of one pipeline run
type Stage int

const (
	StageIdle Stage = iota
	StageInspecting
	StagePrompting
	StageGenerating
	StageValidating
	StageCommitting
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:       "idle",
	StageInspecting: "inspecting",
	StagePrompting:  "prompting",
	StageGenerating: "generating",
	StageValidating: "validating",
	StageCommitting: "committing",
	StageDone:       "done",
	StageFailed:     "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}
