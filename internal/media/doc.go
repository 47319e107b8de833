// Package media derives video thumbnails with ffprobe and ffmpeg.
//
// A Sampler probes the container duration. A Materializer picks the frame at
// exactly half that duration, extracts it to a hidden temporary file next to
// the target, checks that it decodes, and renames it to
// thumbsRoot/<relative video path>.jpg. An existing thumbnail is kept unless
// the StaleModTime policy finds it older than its video.
package media
