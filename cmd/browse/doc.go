// Command browse is a terminal client for a running video grid server.
//
// It keeps a grid of cells like the web frontend does. Each cell browses
// the media tree on its own and searches the whole catalog as you type.
// The catalog is fetched once and shared by all cells.
//
// Usage:
//
//	browse [-server URL] [-rows N] [-cols N]
//
// Commands:
//
//	ls            Show the active cell
//	grid          Show every cell
//	cell N        Make cell N active
//	cd N|NAME     Open an entry: a directory is entered, a video is played
//	up            Go to the parent directory
//	back          Leave the player or clear the search
//	mute, unmute  Change the player's audio
//	full          Play the active cell fullscreen, pausing the others
//	reload        Fetch the catalog again
//	quit          Exit
//
// Anything else is taken as a search term for the active cell. Terms
// shorter than three characters show the directory listing.
//
// Environment:
//
//	VIDEO_GRID_URL - Server URL (default: http://localhost:8080)
package main
