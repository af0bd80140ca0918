package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/michaelvl/helm2yaml/internal/cli"
)

const (
	cmdName = "helm2yaml"

	shortDesc = "Render Helm-based app specs into plain Kubernetes YAML."
	longDesc  = `Render Helm-based app specs into plain Kubernetes YAML.

helm2yaml reads Helmsman desired-state files or Flux HelmRelease resources,
substitutes environment variables in their values, pulls the referenced
charts, and templates them into a single manifest stream. Namespace
resources for the apps' namespaces can be written separately.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
