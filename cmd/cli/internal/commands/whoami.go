package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/wolfeidau/sessionkit/internal/authflow"
)

// WhoamiCmd prints the signed-in user and their organization memberships.
type WhoamiCmd struct {
	clientFlags
}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := newEnv(w.clientFlags)
	if err != nil {
		return err
	}

	if !env.sess.IsAuthenticated() {
		fmt.Println("Not signed in.")
		fmt.Println()
		fmt.Println("To sign in:")
		fmt.Println("  sessionkit-cli login <email>")
		return nil
	}

	// Pull a fresh membership list before printing.
	if err := authflow.RefreshMemberships(ctx, env.client, env.sess); err != nil {
		return err
	}

	user := env.sess.User()
	fmt.Printf("Email:    %s\n", user.Email)
	if user.FirstName != "" || user.LastName != "" {
		fmt.Printf("Name:     %s %s\n", user.FirstName, user.LastName)
	}
	if user.PlatformRole != "" {
		fmt.Printf("Role:     %s\n", user.PlatformRole)
	}
	fmt.Printf("Verified: %v\n", user.IsEmailVerified)
	fmt.Println()

	memberships := env.sess.Memberships()
	if len(memberships) == 0 {
		fmt.Println("No organization memberships.")
		return nil
	}

	activeOrgID := env.sess.ActiveOrganizationID()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORGANIZATION\tSLUG\tROLE\tSTATUS\tACTIVE")

	for _, m := range memberships {
		active := ""
		if m.OrganizationID == activeOrgID {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.OrganizationName, m.OrganizationSlug, m.RoleName, m.Status, active)
	}

	return tw.Flush()
}
