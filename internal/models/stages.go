package models

// Stage names shared by the pipeline, renderers and reports.
const (
	StageOriginal = "original"
	StageGray     = "gray"
	StageBlurred  = "blurred"
	StageBinary   = "binary"
	StageMorph    = "morph"
	StageDilated  = "dilated"
	StageResult   = "result"
)

// StageFile maps a stage to the file it is persisted as.
type StageFile struct {
	Stage string
	File  string
}
