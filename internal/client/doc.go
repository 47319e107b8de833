// Package client talks to a running video grid server over HTTP. It is
// used by the terminal browser and implements browser.Lister and
// search.Loader.
package client
