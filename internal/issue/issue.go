// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	PluginNotFoundId
	IncorrectPluginId
	ClassReadFailedId
	ExternalClasspathInvalidId
	IgnoreFileInvalidId
	ConfigLoadFailedId
	PermissionDeniedId
	ProblemsFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
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

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

A file named on the command line or in the configuration does not exist.

## Things you can try:
- Check the path for typos
- Use an absolute path when running from another directory`,
	}

	pluginNotFoundIssue = &Issue{
		id: PluginNotFoundId,
		mdMsg: `
# Plugin not found!

The plugin path you passed does not exist.

## Things you can try:
- Check the path for typos
- Build the plugin distribution first, then point plugcheck at the result:
~~~
$ plugcheck verify build/distributions/my-plugin.zip
~~~`,
	}

	incorrectPluginIssue = &Issue{
		id: IncorrectPluginId,
		mdMsg: `
# Incorrect plugin!

The plugin could not be turned into a classpath. Nothing was verified.

## Supported plugin layouts:
- A ` + "`.jar`" + ` file holding the plugin classes
- A ` + "`.zip`" + ` file with an optional single top-level directory:
~~~
my-plugin/
  classes/      compiled plugin classes (optional)
  lib/*.jar     bundled libraries
~~~
- An unpacked directory with the same layout

## Things you can try:
- Check that every archive under ` + "`lib/`" + ` is a valid zip or jar
- Rebuild the distribution and try again
- Run with ` + "`--verbose`" + ` to see the full error chain`,
	}

	classReadFailedIssue = &Issue{
		id: ClassReadFailedId,
		mdMsg: `
# Some classes could not be read!

One or more class files are truncated or not valid class files. They were
skipped; every other class was verified.

## Things you can try:
- Rebuild the plugin from a clean state
- Check for class files produced by broken bytecode tools`,
	}

	externalClasspathInvalidIssue = &Issue{
		id: ExternalClasspathInvalidId,
		mdMsg: `
# Invalid external classpath!

An entry of the external classpath could not be opened.

## Things you can try:
- Every entry must be a directory, a ` + "`.jar`" + ` or a ` + "`.zip`" + `
- Check ` + "`verify.external_classpath`" + ` in your config file`,
	}

	ignoreFileInvalidIssue = &Issue{
		id: IgnoreFileInvalidId,
		mdMsg: `
# Invalid ignore file!

The ignored-problems file contains a pattern that is not a valid regular
expression.

## File format:
~~~
// comments start with two slashes
com\.example\.MyAction\.update \(\)V: overriding final method
.*: access to unresolved class com\.legacy\..*
~~~

Each line is matched case-insensitively against the whole
` + "`<subject>: <message>`" + ` text, with ` + "`/`" + ` written as ` + "`.`" + `.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the plugcheck configuration file.

## Configuration file locations:
- Linux: ~/.config/plugcheck/config.cue
- macOS: ~/Library/Application Support/plugcheck/config.cue
- Windows: %APPDATA%\plugcheck\config.cue

## Things you can try:
- Print the effective configuration:
~~~
$ plugcheck config show
~~~

- Remove the config file to use defaults

## Example configuration:
~~~cue
verify: {
  parallelism: 4
  external_classpath: ["/opt/ide/lib"]
  external_prefixes: ["java/", "javax/", "kotlin/"]
}
report: format: "text"
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

plugcheck could not read the plugin or write its temporary extraction.

## Things you can try:
- Check the permissions of the plugin file
- Point ` + "`verify.temp_dir`" + ` at a directory you own`,
	}

	problemsFoundIssue = &Issue{
		id: ProblemsFoundId,
		mdMsg: `
# Compatibility problems found!

The plugin uses API in a way that breaks against the given classpath.

## Things you can try:
- Fix the reported classes and verify again
- Accept known problems with an ignore file:
~~~
$ plugcheck verify --ignore-problems ignored.txt my-plugin.zip
~~~`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():             fileNotFoundIssue,
		pluginNotFoundIssue.Id():           pluginNotFoundIssue,
		incorrectPluginIssue.Id():          incorrectPluginIssue,
		classReadFailedIssue.Id():          classReadFailedIssue,
		externalClasspathInvalidIssue.Id(): externalClasspathInvalidIssue,
		ignoreFileInvalidIssue.Id():        ignoreFileInvalidIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		permissionDeniedIssue.Id():         permissionDeniedIssue,
		problemsFoundIssue.Id():            problemsFoundIssue,
	}
)

// Values returns every catalog issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
