// Command glossa is the operator CLI for the glossa translation daemon. It
// talks to glossad over the HTTP control surface.
package main
