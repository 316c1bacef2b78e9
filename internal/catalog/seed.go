// Package catalog provides the built-in exam question set. In production
// deployments the catalog is loaded from Postgres; the seed keeps the
// service runnable without a database and backs the demo configuration.
package catalog

import (
	"time"

	"gitquiz-service/internal/domain"
)

// Default returns the built-in Git/GitHub exam catalog: 21 scored
// questions plus 3 control questions that restate earlier material.
func Default() domain.Catalog {
	return domain.Catalog{
		TotalTimeLimit: 25 * time.Minute,
		Questions: []domain.Question{
			{
				ID:     1,
				Prompt: "What is Git primarily used for?",
				Options: []string{
					"Hosting websites",
					"Version control (tracking changes in files)",
					"Writing code faster",
					"Running code online",
				},
				CorrectIndex: 1,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:     2,
				Prompt: "What is GitHub primarily used for?",
				Options: []string{
					"A cloud service to store and collaborate on Git repositories",
					"A programming language",
					"A text editor",
					"A database",
				},
				CorrectIndex: 0,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:           3,
				Prompt:       "Which command creates a new local Git repository in the current folder?",
				Options:      []string{"git start", "git init", "git clone", "git new"},
				CorrectIndex: 1,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:           4,
				Prompt:       "Which command shows the current status (staged/unstaged changes)?",
				Options:      []string{"git status", "git check", "git log", "git diff --all"},
				CorrectIndex: 0,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:     5,
				Prompt: "What does git add . do?",
				Options: []string{
					"Uploads files to GitHub",
					"Stages changes in the current directory for commit",
					"Deletes untracked files",
					"Creates a new branch",
				},
				CorrectIndex: 1,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:     6,
				Prompt: "What does git commit do?",
				Options: []string{
					"Saves a snapshot of staged changes in the local repo",
					"Uploads your files to GitHub",
					"Downloads changes from GitHub",
					"Removes changes",
				},
				CorrectIndex: 0,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:           7,
				Prompt:       "Which command is typically used to upload local commits to a remote repository?",
				Options:      []string{"git upload", "git push", "git send", "git publish"},
				CorrectIndex: 1,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:           8,
				Prompt:       "Which command downloads commits from a remote and merges them into your current branch?",
				Options:      []string{"git pull", "git fetch", "git download", "git merge --remote"},
				CorrectIndex: 0,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:     9,
				Prompt: "What is a branch in Git?",
				Options: []string{
					"A copy of your computer",
					"A separate line of development",
					"A folder on GitHub",
					"A backup of all files",
				},
				CorrectIndex: 1,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:     10,
				Prompt: "What is a merge conflict?",
				Options: []string{
					"GitHub server is down",
					"Two branches changed the same part of a file in incompatible ways",
					"Your password is wrong",
					"You forgot to commit",
				},
				CorrectIndex: 1,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:           11,
				Prompt:       "In the typical local workflow, what comes right after git add?",
				Options:      []string{"git pull", "git commit", "git clone", "git fork"},
				CorrectIndex: 1,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:     12,
				Prompt: "What does origin usually refer to in Git?",
				Options: []string{
					"Your current branch name",
					"The default name for the remote you cloned from (often your fork on GitHub)",
					"The first commit in the project",
					"A backup folder Git creates automatically",
				},
				CorrectIndex: 1,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:     13,
				Prompt: "What is the purpose of a .gitignore file?",
				Options: []string{
					"It encrypts your repository so others can't see it",
					"It tells Git which files/folders to ignore so they won't be tracked/committed",
					"It automatically fixes merge conflicts",
					"It syncs your repo with GitHub every minute",
				},
				CorrectIndex: 1,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:     14,
				Prompt: "Which statement best describes git clone?",
				Options: []string{
					"Copies a remote repository to your computer for the first time",
					"Uploads your local repo to GitHub",
					"Deletes a repository",
					"Renames a repository",
				},
				CorrectIndex: 0,
				TimeLimit:    40 * time.Second,
			},
			{
				ID:     15,
				Prompt: "Which statement best describes a Pull Request (PR)?",
				Options: []string{
					"A way to delete commits from history",
					"A request to merge your changes (usually from a branch/fork) into another repo/branch",
					"A command that downloads updates from GitHub",
					"A tool that automatically writes commit messages",
				},
				CorrectIndex: 1,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:     16,
				Prompt: "You edit README.md, and a new file notes.txt appears that you do not want in the repo. What is the best Git/GitHub concept for this?",
				Options: []string{
					"Add notes.txt to .gitignore so it's not tracked",
					"Put notes.txt into the .git folder",
					"Commit it and delete it later",
					"Rename it to README2.md",
				},
				CorrectIndex: 0,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:     17,
				Prompt: "In a \"teacher repo -> student fork -> PR back\" workflow, what is the most common reason students' PRs get messy or conflicts increase?",
				Options: []string{
					"They forget to star the repository on GitHub",
					"They work on their fork without syncing it with the teacher repo first",
					"They use too many commit messages",
					"They push their project into the README.md file",
				},
				CorrectIndex: 1,
				TimeLimit:    45 * time.Second,
			},
			{
				ID:           18,
				Prompt:       "True/False: \"If I commit, my changes are automatically on GitHub.\"",
				Options:      []string{"True", "False"},
				CorrectIndex: 1,
				TimeLimit:    25 * time.Second,
			},
			{
				ID:           19,
				Prompt:       "True/False: \"A repository can exist only locally, without GitHub.\"",
				Options:      []string{"True", "False"},
				CorrectIndex: 0,
				TimeLimit:    25 * time.Second,
			},
			{
				ID:           20,
				Prompt:       "True/False: \"A fork is a copy of a repository under your own GitHub account.\"",
				Options:      []string{"True", "False"},
				CorrectIndex: 0,
				TimeLimit:    25 * time.Second,
			},
			{
				ID:           21,
				Prompt:       "True/False: \"If your fork is behind the teacher repo, you should sync it before starting new work.\"",
				Options:      []string{"True", "False"},
				CorrectIndex: 0,
				TimeLimit:    25 * time.Second,
			},
			{
				ID:           22,
				Prompt:       "Which Git command starts tracking changes in a brand new local folder?",
				Options:      []string{"git begin", "git init", "git clone", "git create"},
				CorrectIndex: 1,
				TimeLimit:    35 * time.Second,
				IsControl:    true,
			},
			{
				ID:           23,
				Prompt:       "What command lets you see which files are staged or unstaged right now?",
				Options:      []string{"git status", "git check", "git log", "git diff --all"},
				CorrectIndex: 0,
				TimeLimit:    35 * time.Second,
				IsControl:    true,
			},
			{
				ID:     24,
				Prompt: "Which option best explains a Pull Request (PR)?",
				Options: []string{
					"A request to merge your changes into another branch or repo",
					"A command that downloads updates from GitHub",
					"A way to delete commits from history",
					"A tool that auto-writes commit messages",
				},
				CorrectIndex: 0,
				TimeLimit:    40 * time.Second,
				IsControl:    true,
			},
		},
	}
}
