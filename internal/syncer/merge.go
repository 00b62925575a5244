package syncer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

// RecordError is one bundle record the merge could not apply. The record is
// skipped and the rest of the bundle still goes through.
type RecordError struct {
	Collection string `json:"collection"`
	NaturalKey string `json:"natural_key"`
	Reason     string `json:"reason"`
}

// Conflict marks a project that two different users have edited since the
// other's last merge. Last merge still wins; the conflict is surfaced so the
// administrator can reconcile with both owners.
type Conflict struct {
	CCRNFID      string `json:"ccr_nfid"`
	PreviousUser string `json:"previous_user"`
	IncomingUser string `json:"incoming_user"`
}

// MergeReport is the outcome of merging one bundle into the master store.
type MergeReport struct {
	File      string             `json:"file,omitempty"`
	Username  string             `json:"username"`
	Applied   types.BundleCounts `json:"applied"`
	Created   int                `json:"projects_created"`
	Updated   int                `json:"projects_updated"`
	Skipped   []RecordError      `json:"skipped,omitempty"`
	Conflicts []Conflict         `json:"conflicts,omitempty"`
}

// Clean reports whether every record applied without a conflict.
func (r *MergeReport) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Conflicts) == 0
}

func (r *MergeReport) skip(collection, key string, err error) {
	r.Skipped = append(r.Skipped, RecordError{
		Collection: collection,
		NaturalKey: key,
		Reason:     err.Error(),
	})
}

// Merge applies one bundle to the master store. Projects go first so that
// the child collections can resolve their parent by ccr_nfid within the same
// pass; children of a skipped project are themselves skipped with a
// parent-not-found reason. Merge never aborts on a record failure, only on
// programmer error, so a partially bad bundle still lands its good records.
func Merge(master *store.MasterStore, bundle *types.SyncBundle) *MergeReport {
	report := &MergeReport{Username: bundle.Username}

	for i := range bundle.Projects {
		p := &bundle.Projects[i]
		if err := p.Validate(); err != nil {
			report.skip("projects", p.CCRNFID, err)
			continue
		}

		existing, err := master.GetProjectByNaturalKey(p.CCRNFID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			report.skip("projects", p.CCRNFID, err)
			continue
		}
		if existing != nil && existing.LastSyncedBy != "" &&
			existing.LastSyncedBy != bundle.Username &&
			projectDiffers(&existing.Project, p) {
			report.Conflicts = append(report.Conflicts, Conflict{
				CCRNFID:      p.CCRNFID,
				PreviousUser: existing.LastSyncedBy,
				IncomingUser: bundle.Username,
			})
		}

		_, created, err := master.UpsertProject(p, bundle.Username)
		if err != nil {
			report.skip("projects", p.CCRNFID, err)
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
		report.Applied.Projects++
	}

	for i := range bundle.KPISnapshots {
		k := &bundle.KPISnapshots[i]
		parentID, err := resolveParent(master, k.ProjectCCRNFID)
		if err != nil {
			report.skip("kpi_snapshots", k.ProjectCCRNFID, err)
			continue
		}
		if err := master.UpsertKPISnapshot(parentID, k); err != nil {
			report.skip("kpi_snapshots", k.ProjectCCRNFID, err)
			continue
		}
		report.Applied.KPISnapshots++
	}

	for i := range bundle.Dependencies {
		d := &bundle.Dependencies[i]
		parentID, err := resolveParent(master, d.ProjectCCRNFID)
		if err != nil {
			report.skip("project_dependencies", d.ProjectCCRNFID, err)
			continue
		}
		dependsOnID, err := resolveParent(master, d.DependsOnCCRNFID)
		if err != nil {
			report.skip("project_dependencies", d.DependsOnCCRNFID, err)
			continue
		}
		if err := master.UpsertDependency(parentID, dependsOnID, d); err != nil {
			report.skip("project_dependencies", d.ProjectCCRNFID, err)
			continue
		}
		report.Applied.Dependencies++
	}

	for i := range bundle.Contacts {
		c := &bundle.Contacts[i]
		parentID, err := resolveParent(master, c.ProjectCCRNFID)
		if err != nil {
			report.skip("project_contacts", c.ProjectCCRNFID, err)
			continue
		}
		if err := master.UpsertContact(parentID, c); err != nil {
			report.skip("project_contacts", c.ProjectCCRNFID, err)
			continue
		}
		report.Applied.Contacts++
	}

	return report
}

// resolveParent maps a bundled record's parent ccr_nfid to the master
// surrogate id. Local numeric ids never cross the sync boundary.
func resolveParent(master *store.MasterStore, ccrNFID string) (int64, error) {
	if ccrNFID == "" {
		return 0, fmt.Errorf("%w: record carries no parent ccr_nfid", types.ErrMalformedBundle)
	}
	mp, err := master.GetProjectByNaturalKey(ccrNFID)
	if err != nil {
		return 0, err
	}
	return mp.Project.LocalID, nil
}

// projectDiffers compares the fields a merge would overwrite. Identical
// values from a second user are not a conflict.
func projectDiffers(existing, incoming *types.Project) bool {
	return existing.Name != incoming.Name ||
		existing.Status != incoming.Status ||
		existing.Phase != incoming.Phase ||
		existing.Notes != incoming.Notes ||
		existing.Customer != incoming.Customer ||
		existing.CLLI != incoming.CLLI ||
		existing.SiteAddress != incoming.SiteAddress ||
		existing.CurrentQueue != incoming.CurrentQueue ||
		existing.SystemType != incoming.SystemType ||
		existing.ProjectStartDate != incoming.ProjectStartDate ||
		existing.ProjectCompleteDate != incoming.ProjectCompleteDate
}

// Processor drives bundle consumption: read a pending bundle, merge it, then
// archive it. Archiving is the commit point; a bundle whose archive rename
// fails stays pending and will be merged again.
type Processor struct {
	master *store.MasterStore
	inbox  *Inbox
	logger *zap.Logger
}

// NewProcessor returns a processor over the given master store and inbox.
func NewProcessor(master *store.MasterStore, inbox *Inbox, logger *zap.Logger) *Processor {
	return &Processor{master: master, inbox: inbox, logger: logger}
}

// ProcessOne merges a single pending bundle and archives it. A bundle that
// cannot be read or parsed is left in the inbox and the error returned; the
// administrator decides whether to remove it by hand.
func (p *Processor) ProcessOne(name string) (*MergeReport, error) {
	bundle, err := p.inbox.Read(name)
	if err != nil {
		return nil, err
	}

	report := Merge(p.master, bundle)
	report.File = name

	if err := p.inbox.Archive(name); err != nil {
		return report, err
	}

	p.logger.Info("bundle merged",
		zap.String("file", name),
		zap.String("username", report.Username),
		zap.Int("applied", report.Applied.Total()),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("conflicts", len(report.Conflicts)))
	return report, nil
}

// ProcessAll merges every pending bundle, oldest first. A failing bundle
// does not stop the pass; its error is joined into the returned error and
// the remaining bundles still go through.
func (p *Processor) ProcessAll() ([]*MergeReport, error) {
	names, err := p.inbox.ListPending()
	if err != nil {
		return nil, err
	}

	var reports []*MergeReport
	var errs []error
	for _, name := range names {
		report, err := p.ProcessOne(name)
		if err != nil {
			p.logger.Warn("bundle not processed", zap.String("file", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		if report != nil {
			reports = append(reports, report)
		}
	}
	return reports, errors.Join(errs...)
}
