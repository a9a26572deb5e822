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
	var script string
	switch c.Shell {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s", c.Shell)
	}
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

const bashCompletion = `# rn-run bash completion script
# Add to ~/.bashrc or ~/.bash_profile:
#   eval "$(rn-run completion bash)"

_rn_run_completions() {
    local cur prev words cword
    _init_completion || return

    local commands="record logs show-log prune config version completion"
    local global_flags="-f --format -q --quiet -v --verbose --log-dir"

    case "${prev}" in
        rn-run)
            COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
            return
            ;;
        -f|--format)
            COMPREPLY=($(compgen -W "ndjson text" -- "${cur}"))
            return
            ;;
        -p|--platform)
            COMPREPLY=($(compgen -W "ios android" -- "${cur}"))
            return
            ;;
        --log-dir)
            COMPREPLY=($(compgen -d -- "${cur}"))
            return
            ;;
        config)
            COMPREPLY=($(compgen -W "show path generate" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
    esac

    case "${words[1]}" in
        record)
            COMPREPLY=($(compgen -W "-p --platform ${global_flags}" -- "${cur}"))
            ;;
        logs)
            COMPREPLY=($(compgen -W "--limit ${global_flags}" -- "${cur}"))
            ;;
        show-log)
            COMPREPLY=($(compgen -W "--raw --width ${global_flags}" -- "${cur}"))
            ;;
        prune)
            COMPREPLY=($(compgen -W "--keep ${global_flags}" -- "${cur}"))
            ;;
        *)
            COMPREPLY=($(compgen -W "${commands} ${global_flags}" -- "${cur}"))
            ;;
    esac
}

complete -F _rn_run_completions rn-run
`

const zshCompletion = `#compdef rn-run
# rn-run zsh completion script
# Add to ~/.zshrc:
#   eval "$(rn-run completion zsh)"

_rn_run() {
    local -a commands
    commands=(
        'record:Run a build command and capture its output to a new log'
        'logs:List captured build logs'
        'show-log:Print a captured build log without colors or spinner noise'
        'prune:Delete old build logs'
        'config:Show or manage configuration'
        'version:Show version information'
        'completion:Generate shell completions'
    )

    local -a global_opts
    global_opts=(
        '-f[Output format]:format:(ndjson text)'
        '--format[Output format]:format:(ndjson text)'
        '-q[Suppress informational output]'
        '--quiet[Suppress informational output]'
        '-v[Show debug output]'
        '--verbose[Show debug output]'
        '--log-dir[Build log directory]:directory:_directories'
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
                record)
                    _arguments \
                        '-p[Platform the build targets]:platform:(ios android)' \
                        '--platform[Platform the build targets]:platform:(ios android)' \
                        $global_opts
                    ;;
                logs)
                    _arguments '--limit[Max logs to show]:limit:' $global_opts
                    ;;
                show-log)
                    _arguments \
                        '--raw[Print the log exactly as captured]' \
                        '--width[Truncate each line]:columns:' \
                        '1::index:' \
                        $global_opts
                    ;;
                prune)
                    _arguments '--keep[Number of logs to keep]:count:' $global_opts
                    ;;
                config)
                    _arguments '1:action:(show path generate)'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

compdef _rn_run rn-run
`

const fishCompletion = `# rn-run fish completion script
# Add to ~/.config/fish/completions/rn-run.fish

# Disable file completion by default
complete -c rn-run -f

# Commands
complete -c rn-run -n "__fish_use_subcommand" -a "record" -d "Run a build command and capture its output"
complete -c rn-run -n "__fish_use_subcommand" -a "logs" -d "List captured build logs"
complete -c rn-run -n "__fish_use_subcommand" -a "show-log" -d "Print a captured build log"
complete -c rn-run -n "__fish_use_subcommand" -a "prune" -d "Delete old build logs"
complete -c rn-run -n "__fish_use_subcommand" -a "config" -d "Show or manage configuration"
complete -c rn-run -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c rn-run -n "__fish_use_subcommand" -a "completion" -d "Generate shell completions"

# Global flags
complete -c rn-run -s f -l format -d "Output format" -xa "ndjson text"
complete -c rn-run -s q -l quiet -d "Suppress informational output"
complete -c rn-run -s v -l verbose -d "Show debug output"
complete -c rn-run -l log-dir -d "Build log directory" -xa "(__fish_complete_directories)"

complete -c rn-run -n "__fish_seen_subcommand_from record" -s p -l platform -d "Platform the build targets" -xa "ios android"
complete -c rn-run -n "__fish_seen_subcommand_from logs" -l limit -d "Max logs to show" -x
complete -c rn-run -n "__fish_seen_subcommand_from show-log" -l raw -d "Print the log exactly as captured"
complete -c rn-run -n "__fish_seen_subcommand_from show-log" -l width -d "Truncate each line to this many columns" -x
complete -c rn-run -n "__fish_seen_subcommand_from prune" -l keep -d "Number of logs to keep" -x
complete -c rn-run -n "__fish_seen_subcommand_from config" -a "show path generate"
complete -c rn-run -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
