package cli

// validateFlags centralizes store flag combinations to keep behavior consistent.
func validateFlags(globals *Globals) error {
	if globals == nil {
		return nil
	}
	// plist is an encoding of the file backend only
	if globals.StoreFormat == "plist" && globals.Store != "file" {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--store-format plist requires --store file", "drop --store-format or switch to --store file")
	}
	// memory keeps nothing on disk, a path would be silently ignored
	if globals.Store == "memory" && globals.StorePath != "" {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--store-path cannot be combined with --store memory", "drop --store-path or pick a persistent store")
	}
	return nil
}
