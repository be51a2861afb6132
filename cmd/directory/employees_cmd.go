package main

import (
	"github.com/ogurasousui/codex-directory-client/internal/core/employee"
	"github.com/spf13/cobra"
)

var departmentUsage = "department (" + employee.DepartmentNames(", ") + ")"

func newEmployeesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"emp"},
		Short:   "Manage employees",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			return c.app.Session.RequireAuthenticated()
		},
	}

	cmd.AddCommand(
		newEmployeesListCmd(c),
		newEmployeesGetCmd(c),
		newEmployeesCreateCmd(c),
		newEmployeesUpdateCmd(c),
		newEmployeesDeleteCmd(c),
	)
	return cmd
}

func newEmployeesListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.app.Employees.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.writeEmployees(list)
		},
	}
}

func newEmployeesGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.app.Employees.GetByID(cmd.Context(), employee.ID(args[0]))
			if err != nil {
				return err
			}
			return c.writeEmployee(e)
		},
	}
}

func newEmployeesCreateCmd(c *cli) *cobra.Command {
	var (
		in   employee.CreateInput
		dept string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Department = employee.Department(dept)
			if err := in.Validate(); err != nil {
				return err
			}
			e, err := c.app.Employees.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.writeEmployee(e)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&dept, "department", "", departmentUsage)
	return cmd
}

func newEmployeesUpdateCmd(c *cli) *cobra.Command {
	var name, email, dept string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update the given fields of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in employee.UpdateInput
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("email") {
				in.Email = &email
			}
			if flags.Changed("department") {
				d := employee.Department(dept)
				in.Department = &d
			}
			if in.Name == nil && in.Email == nil && in.Department == nil {
				return usageError("at least one of --name, --email or --department is required")
			}
			if err := in.Validate(); err != nil {
				return err
			}

			e, err := c.app.Employees.Update(cmd.Context(), employee.ID(args[0]), in)
			if err != nil {
				return err
			}
			return c.writeEmployee(e)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&dept, "department", "", departmentUsage)
	return cmd
}

func newEmployeesDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Employees.Delete(cmd.Context(), employee.ID(args[0])); err != nil {
				return err
			}
			if c.jsonOutput() {
				return c.writeJSON(map[string]string{"deleted": args[0]})
			}
			return nil
		},
	}
}
