// Package config loads the cache's HCL configuration file.
//
// The file names the regions to create at startup, the loaders that seed
// them, the notifiers that receive change notifications and an optional
// notifications.yaml routing table. Relative paths inside the file are
// resolved against the file's own directory.
package config
