package command

// GitProgram is the default git executable name
const GitProgram = "git"

// GitStatus builds a git status command
func GitStatus(dir string) Spec {
	return Spec{
		Dir:     dir,
		Program: GitProgram,
		Args:    []string{"status"},
	}
}

// GitStatusPorcelain builds a machine-readable git status command.
// Empty output means the working tree has nothing to commit.
func GitStatusPorcelain(dir string) Spec {
	return Spec{
		Dir:     dir,
		Program: GitProgram,
		Args:    []string{"status", "--porcelain"},
	}
}

// GitAddAll builds a git add command staging every change
func GitAddAll(dir string) Spec {
	return Spec{
		Dir:     dir,
		Program: GitProgram,
		Args:    []string{"add", "--all"},
	}
}

// GitCommit builds a git commit command.
// The message is passed as a single argument and is never re-parsed by a shell.
func GitCommit(dir, message string) Spec {
	return Spec{
		Dir:     dir,
		Program: GitProgram,
		Args:    []string{"commit", "-m", message},
	}
}

// GitPush builds a git push command
func GitPush(dir, remote string) Spec {
	args := []string{"push"}

	if remote != "" {
		args = append(args, remote)
	}

	return Spec{
		Dir:     dir,
		Program: GitProgram,
		Args:    args,
	}
}

// GitInit builds a git init command
func GitInit(dir string) Spec {
	return Spec{
		Dir:     dir,
		Program: GitProgram,
		Args:    []string{"init"},
	}
}

// WithProgram returns a copy of spec that runs program instead,
// e.g. an absolute path to a specific git binary
func WithProgram(spec Spec, program string) Spec {
	if program == "" {
		return spec
	}
	spec = spec.clone()
	spec.Program = program
	return spec
}
