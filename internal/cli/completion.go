package cli

import (
	"fmt"
)

// CompletionCmd generates shell completions
type CompletionCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish" help:"Shell type (bash, zsh, fish)"`
}

// Run executes the completion command
func (c *CompletionCmd) Run(globals *Globals) error {
	switch c.Shell {
	case "bash":
		return c.generateBash(globals)
	case "zsh":
		return c.generateZsh(globals)
	case "fish":
		return c.generateFish(globals)
	default:
		return fmt.Errorf("unsupported shell: %s", c.Shell)
	}
}

func (c *CompletionCmd) generateBash(globals *Globals) error {
	script := `# lcf bash completion script
# Add to ~/.bashrc or ~/.bash_profile:
#   eval "$(lcf completion bash)"

_lcf_completions() {
    local cur prev words cword
    _init_completion || return

    local commands="filter check stats discover keys ui config version completion"
    local global_flags="-f --format -l --level -q --quiet -v --verbose -c --match-case"

    case "${prev}" in
        lcf)
            COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
            return
            ;;
        -f|--format)
            COMPREPLY=($(compgen -W "ndjson text" -- "${cur}"))
            return
            ;;
        -l|--level)
            COMPREPLY=($(compgen -W "verbose debug info warn error assert" -- "${cur}"))
            return
            ;;
        -e|--expr)
            COMPREPLY=($(compgen -W "tag: package: process: message: level: age: is:crash is:stacktrace package:mine" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
        config)
            COMPREPLY=($(compgen -W "show path generate" -- "${cur}"))
            return
            ;;
    esac

    case "${words[1]}" in
        filter)
            COMPREPLY=($(compgen -f -W "-e --expr -F --follow -w --workers -x --exclude --strict --count ${global_flags}" -- "${cur}"))
            ;;
        stats)
            COMPREPLY=($(compgen -f -W "-e --expr -x --exclude --strict --top --remember --pattern-file ${global_flags}" -- "${cur}"))
            ;;
        discover)
            COMPREPLY=($(compgen -f -W "-e --expr --top ${global_flags}" -- "${cur}"))
            ;;
        ui)
            COMPREPLY=($(compgen -f -W "-e --expr -F --follow --buffer-size ${global_flags}" -- "${cur}"))
            ;;
        check)
            COMPREPLY=($(compgen -W "--strict ${global_flags}" -- "${cur}"))
            ;;
        *)
            COMPREPLY=($(compgen -W "${commands} ${global_flags}" -- "${cur}"))
            ;;
    esac
}

complete -F _lcf_completions lcf
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

func (c *CompletionCmd) generateZsh(globals *Globals) error {
	script := `#compdef lcf
# lcf zsh completion script
# Add to ~/.zshrc:
#   eval "$(lcf completion zsh)"

_lcf() {
    local -a commands
    commands=(
        'filter:Filter logcat output with a filter expression'
        'check:Show how a filter expression parses'
        'stats:Summarize matching entries'
        'discover:List the tags, packages and processes in a capture'
        'keys:List filter keys'
        'ui:Interactive live filter'
        'config:Show configuration'
        'version:Show version information'
        'completion:Generate shell completions'
    )

    local -a global_opts
    global_opts=(
        '-f[Output format]:format:(ndjson text)'
        '--format[Output format]:format:(ndjson text)'
        '-l[Minimum log level]:level:(verbose debug info warn error assert)'
        '--level[Minimum log level]:level:(verbose debug info warn error assert)'
        '-q[Suppress non-log output]'
        '--quiet[Suppress non-log output]'
        '-v[Show debug output]'
        '--verbose[Show debug output]'
        '-c[Case-sensitive matching]'
        '--match-case[Case-sensitive matching]'
    )

    _arguments -C \
        $global_opts \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                filter)
                    _arguments \
                        '-e[Filter expression]:expression:' \
                        '--expr[Filter expression]:expression:' \
                        '-F[Follow the last input]' \
                        '--follow[Follow the last input]' \
                        '-w[Matching goroutines]:workers:' \
                        '--workers[Matching goroutines]:workers:' \
                        '*-x[Regex pattern to exclude]:pattern:' \
                        '*--exclude[Regex pattern to exclude]:pattern:' \
                        '--strict[Fail on filter problems]' \
                        '--count[Print only the match count]' \
                        '*:file:_files' \
                        $global_opts
                    ;;
                stats)
                    _arguments \
                        '-e[Filter expression]:expression:' \
                        '--expr[Filter expression]:expression:' \
                        '--top[Number of top values]:count:' \
                        '--remember[Remember error patterns]' \
                        '--pattern-file[Pattern memory file]:file:_files' \
                        '*:file:_files' \
                        $global_opts
                    ;;
                discover|ui)
                    _arguments \
                        '-e[Filter expression]:expression:' \
                        '--expr[Filter expression]:expression:' \
                        '*:file:_files' \
                        $global_opts
                    ;;
                config)
                    _arguments '1:subcommand:(show path generate)'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

compdef _lcf lcf
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

func (c *CompletionCmd) generateFish(globals *Globals) error {
	script := `# lcf fish completion script
# Add to ~/.config/fish/completions/lcf.fish

# Commands
complete -c lcf -n "__fish_use_subcommand" -a "filter" -d "Filter logcat output with a filter expression"
complete -c lcf -n "__fish_use_subcommand" -a "check" -d "Show how a filter expression parses"
complete -c lcf -n "__fish_use_subcommand" -a "stats" -d "Summarize matching entries"
complete -c lcf -n "__fish_use_subcommand" -a "discover" -d "List the tags, packages and processes in a capture"
complete -c lcf -n "__fish_use_subcommand" -a "keys" -d "List filter keys"
complete -c lcf -n "__fish_use_subcommand" -a "ui" -d "Interactive live filter"
complete -c lcf -n "__fish_use_subcommand" -a "config" -d "Show configuration"
complete -c lcf -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c lcf -n "__fish_use_subcommand" -a "completion" -d "Generate shell completions"

# Global flags
complete -c lcf -s f -l format -d "Output format" -xa "ndjson text"
complete -c lcf -s l -l level -d "Minimum log level" -xa "verbose debug info warn error assert"
complete -c lcf -s q -l quiet -d "Suppress non-log output"
complete -c lcf -s v -l verbose -d "Show debug output"
complete -c lcf -s c -l match-case -d "Case-sensitive matching"

# Filter command
complete -c lcf -n "__fish_seen_subcommand_from filter stats discover ui" -s e -l expr -d "Filter expression" -x
complete -c lcf -n "__fish_seen_subcommand_from filter ui" -s F -l follow -d "Follow the last input"
complete -c lcf -n "__fish_seen_subcommand_from filter" -s w -l workers -d "Matching goroutines" -x
complete -c lcf -n "__fish_seen_subcommand_from filter stats" -s x -l exclude -d "Regex pattern to exclude" -x
complete -c lcf -n "__fish_seen_subcommand_from filter stats check" -l strict -d "Fail on filter problems"
complete -c lcf -n "__fish_seen_subcommand_from filter" -l count -d "Print only the match count"

# Stats command
complete -c lcf -n "__fish_seen_subcommand_from stats discover" -l top -d "Number of top values" -x
complete -c lcf -n "__fish_seen_subcommand_from stats" -l remember -d "Remember error patterns"
complete -c lcf -n "__fish_seen_subcommand_from stats" -l pattern-file -d "Pattern memory file" -r

# UI command
complete -c lcf -n "__fish_seen_subcommand_from ui" -l buffer-size -d "Entries kept in memory" -x

# Config command
complete -c lcf -n "__fish_seen_subcommand_from config" -a "show path generate"

# Completion command
complete -c lcf -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}
