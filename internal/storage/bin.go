package storage

// Resolved external tool locations. Populated at startup by deps.CheckDependency
// from config and PATH lookup; every subprocess invocation goes through these.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)
