package cli

// KeysCmd lists the filter keys with their effective match modes
type KeysCmd struct{}

// Run executes the keys command
func (c *KeysCmd) Run(globals *Globals) error {
	opts, err := globals.FilterOptions()
	if err != nil {
		return emitCLIError(globals, err)
	}
	return globals.Emitter().WriteKeys(opts.Keys.Specs())
}
