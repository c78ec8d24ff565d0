package deps

// Remote lists the tools the detector shells out to when a case source is a
// URL. Both must be on PATH before any remote case is attempted.
func Remote(ytDlpBinary, ffmpegBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     ytDlpBinary,
			Description: "Downloads remote audio sources",
			Hint:        "brew install yt-dlp",
		},
		{
			Name:        "ffmpeg",
			Command:     ffmpegBinary,
			Description: "Transcodes downloaded audio for analysis",
			Hint:        "brew install ffmpeg",
		},
	}
}
