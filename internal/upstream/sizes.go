package upstream

// defaultVideoSize is the last-resort pixel size when neither the aspect
// ratio nor the resolution is recognized.
const defaultVideoSize = "1920x1080"

// videoSizes maps aspect ratio and resolution onto the pixel-dimension
// string the upstream APIs expect.
var videoSizes = map[string]map[string]string{
	"16:9": {
		"720p":  "1280x720",
		"1080p": "1920x1080",
		"4k":    "3840x2160",
	},
	"9:16": {
		"720p":  "720x1280",
		"1080p": "1080x1920",
		"4k":    "2160x3840",
	},
	"1:1": {
		"720p":  "720x720",
		"1080p": "1080x1080",
		"4k":    "2160x2160",
	},
}

// landscapeSizes serves requests whose aspect ratio is unrecognized.
var landscapeSizes = map[string]string{
	"720p":  "1280x720",
	"1080p": "1920x1080",
}

// videoSize resolves (aspectRatio, resolution) to a pixel-dimension string
// with a two-level fallback: an unknown aspect ratio drops to the
// landscape-only table, and an unknown resolution in either table drops to
// 1920x1080.
func videoSize(aspectRatio, resolution string) string {
	if byResolution, ok := videoSizes[aspectRatio]; ok {
		if size, ok := byResolution[resolution]; ok {
			return size
		}
		return defaultVideoSize
	}
	if size, ok := landscapeSizes[resolution]; ok {
		return size
	}
	return defaultVideoSize
}
