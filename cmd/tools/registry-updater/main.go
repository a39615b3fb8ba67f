// cmd/tools/registry-updater/main.go

// registry-updater maintains configs/activity-registry.json from the command
// line: add a new activity entry, update a field on an existing one, or
// validate the whole file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"subscription-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	id := fs.String("id", "", "Activity ID (e.g., verify-subscription)")
	displayName := fs.String("displayName", "", "Display name (e.g., Verify Subscription)")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "", "Category (e.g., subscription)")
	taskType := fs.String("taskType", "", "Camunda task type (e.g., verify-subscription)")
	version := fs.String("version", "1.0.0", "Activity version")
	status := fs.String("status", "planned", "Implementation status (planned, in-progress, completed, verified)")
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	if *id == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
		fs.Usage()
		return fmt.Errorf("id, displayName, description, category and taskType are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{
			Version:     "1.0.0",
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
		}
	}

	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "30s",
		Workflows:            []string{},
		Tags:                 []string{},
	})
	if err != nil {
		return err
	}

	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Added activity %s to %s\n", *id, *path)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := fs.String("value", "", "New value for the field")
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("id, field and value are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.SetField(*id, *field, *value); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}

	fmt.Printf("Updated activity %s: %s = %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Registry is valid: %d activities\n", len(reg.Activities))
	return nil
}

func usage() {
	fmt.Println(`Usage: registry-updater <command> [flags]

Commands:
  add       Add a new activity to the registry
  update    Update a field on an existing activity
  validate  Check the registry file for structural problems
  help      Show this help message

Examples:
  registry-updater add -id verify-subscription -displayName "Verify Subscription" \
    -description "Verifies a user subscription against the franchise backend" \
    -category subscription -taskType verify-subscription
  registry-updater update -id verify-subscription -field status -value completed
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for flag details.`)
}
