// Package manifest lists the directories and files an installer has to
// create, in an order that is safe for installation and, reversed, for
// removal.
package manifest
