package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// OrgsCmd manages the active organization.
type OrgsCmd struct {
	List   OrgsListCmd   `cmd:"" help:"List organization memberships"`
	Switch OrgsSwitchCmd `cmd:"" help:"Switch the active organization"`
	Clear  OrgsClearCmd  `cmd:"" help:"Clear the active organization"`
}

// OrgsListCmd lists the cached memberships.
type OrgsListCmd struct {
	clientFlags
}

func (o *OrgsListCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := newEnv(o.clientFlags)
	if err != nil {
		return err
	}

	memberships := env.sess.Memberships()
	if len(memberships) == 0 {
		fmt.Println("No organization memberships.")
		return nil
	}

	activeOrgID := env.sess.ActiveOrganizationID()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORGANIZATION\tROLE\tACTIVE")

	for _, m := range memberships {
		active := ""
		if m.OrganizationID == activeOrgID {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.OrganizationID, m.OrganizationName, m.RoleName, active)
	}

	return tw.Flush()
}

// OrgsSwitchCmd sets the active organization to one of the user's
// memberships.
type OrgsSwitchCmd struct {
	OrgID string `arg:"" help:"Organization id to make active"`

	clientFlags
}

func (o *OrgsSwitchCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := newEnv(o.clientFlags)
	if err != nil {
		return err
	}

	found := false
	for _, m := range env.sess.Memberships() {
		if m.OrganizationID == o.OrgID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("not a member of organization %q\n\nRun 'sessionkit-cli orgs list' to see available organizations", o.OrgID)
	}

	if err := env.sess.SetActiveOrganization(o.OrgID); err != nil {
		return err
	}

	fmt.Printf("Active organization set to %s\n", o.OrgID)
	return nil
}

// OrgsClearCmd clears the active organization so requests carry no tenant
// context.
type OrgsClearCmd struct {
	clientFlags
}

func (o *OrgsClearCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := newEnv(o.clientFlags)
	if err != nil {
		return err
	}

	if err := env.sess.SetActiveOrganization(""); err != nil {
		return err
	}

	fmt.Println("Active organization cleared")
	return nil
}
