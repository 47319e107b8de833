// Command genthumbs writes one midpoint thumbnail per video under a
// directory.
//
// Every video is probed with ffprobe for its duration and a single frame at
// half that duration is extracted with ffmpeg. Thumbnails are stored as
// <thumbs>/<path relative to directory>.jpg, which is the layout the server
// serves under /thumbs/. Videos that already have a thumbnail are skipped,
// so the command can be re-run after adding files.
//
// Usage:
//
//	genthumbs [flags] <directory>
//
// Flags:
//
//	-thumbs   Thumbnail root (default: $THUMBS_DIR or ./thumbs)
//	-stale    Regenerate thumbnails older than their video
//	-watch    Keep running and process videos created later
//	-ffmpeg   ffmpeg binary (default: $FFMPEG_PATH or ffmpeg)
//	-ffprobe  ffprobe binary (default: $FFPROBE_PATH or ffprobe)
//
// Videos are processed one at a time. Interrupting the command stops it
// after the current video; no partial thumbnail is left behind.
package main
