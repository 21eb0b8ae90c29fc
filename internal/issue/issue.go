// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PythonNotFoundId Id = iota + 1
	VenvCreationFailedId
	MissingCredentialId
	InstallFailedId
	InvalidRunConfigId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links shown under "See also"
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	pythonNotFoundIssue = &Issue{
		id: PythonNotFoundId,
		mdMsg: `
# No compatible Python found!

The levo CLI needs Python 3.12 or newer, and none of the interpreters we
probed reported a compatible version.

## Interpreters we look for (in order):
1. The ` + "`py`" + ` launcher with version pins (` + "`py -3.14`, `py -3.13`, `py -3.12`" + `)
2. Versioned binaries (` + "`python3.14`, `python3.13`, `python3.12`" + `)
3. Generic binaries (` + "`python3`, `python`" + `)

## Things you can try:
- Install Python 3.12+ from https://www.python.org/downloads/
- On Windows, enable the launcher during installation ("py launcher" feature)
- Make sure the interpreter is on your PATH:
~~~
$ python --version
~~~`,
		docLinks: []HttpLink{"https://docs.levo.ai/install-cli"},
	}

	venvCreationFailedIssue = &Issue{
		id: VenvCreationFailedId,
		mdMsg: `
# Virtual environment creation failed!

Creating the isolated environment for the levo CLI did not succeed.

## Common causes:
- The target directory is not writable
- A partial environment from an interrupted run is in the way
- The ` + "`venv`" + ` module is missing (some distro packages split it out)

## Things you can try:
- Delete the environment directory and re-run:
~~~
$ levorun install
~~~
- On Debian/Ubuntu install the venv module:
~~~
$ sudo apt install python3-venv
~~~`,
		docLinks: []HttpLink{"https://docs.python.org/3/library/venv.html"},
	}

	missingCredentialIssue = &Issue{
		id: MissingCredentialId,
		mdMsg: `
# Package index credential incomplete!

` + "`PYPI_USERNAME` and `PYPI_PASSWORD`" + ` must be set together; exactly one
of them is set right now.

## Things you can try:
- Export both variables before running:
~~~
$ export PYPI_USERNAME=... PYPI_PASSWORD=...
~~~
- Or unset both to install from the public index`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# levo CLI installation failed!

pip reported an error while installing the levo package. The full pip output
was preserved in the install log file printed above.

## Things you can try:
- Inspect the install log for the underlying pip error
- Check network access to the package index
- If you pinned a version, verify it exists:
~~~
$ pip index versions levo
~~~
- Clear the environment and reinstall:
~~~
$ levorun install
~~~`,
		docLinks: []HttpLink{"https://docs.levo.ai/install-cli"},
	}

	invalidRunConfigIssue = &Issue{
		id: InvalidRunConfigId,
		mdMsg: `
# Invalid run configuration!

The test run configuration failed validation before anything was executed.

## Rules:
- ` + "`LEVOAI_AUTH_KEY` and `LEVOAI_ORG_ID`" + ` must be set for test/audit runs
- A target URL is required (flag or ` + "`LEVOAI_TARGET_URL`" + `)
- ` + "`--methods` and `--exclude-methods`" + ` cannot both be given
- Data source must be ` + "`TestUserData` or `Traces`" + `
- Run location must be ` + "`cloud` or `on-prem`" + `

The error message above names the offending field.`,
		docLinks: []HttpLink{"https://docs.levo.ai/test-your-app"},
	}

	issues = map[Id]*Issue{
		pythonNotFoundIssue.Id():     pythonNotFoundIssue,
		venvCreationFailedIssue.Id(): venvCreationFailedIssue,
		missingCredentialIssue.Id():  missingCredentialIssue,
		installFailedIssue.Id():      installFailedIssue,
		invalidRunConfigIssue.Id():   invalidRunConfigIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
