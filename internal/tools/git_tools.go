package tools

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/codechat/internal/gitinfo"
)

// RegisterGitTools adds the repository inspection tools.
func RegisterGitTools(r *Registry, git *gitinfo.Service) {
	r.Register(&Tool{
		Name:        "git_branch",
		Description: "Get the current git branch name",
		Run: func(ctx context.Context, in Input) (string, error) {
			branch, err := git.Branch()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Current branch: %s", branch), nil
		},
	})

	r.Register(&Tool{
		Name:        "git_status",
		Description: "Get the git working tree status",
		Run: func(ctx context.Context, in Input) (string, error) {
			return git.Status()
		},
	})
}
