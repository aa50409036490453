package analysis

import (
	"fmt"
	"strings"

	"intakedesk/pkg/types"
)

const systemPrompt = `Tu es un expert en conception d'applications web/mobiles/SaaS.

À partir des informations du client (problème, situation actuelle, solution souhaitée, budget, délais, langue, fichiers), effectue :

1. Un résumé clair du besoin (5-10 lignes).
2. Une liste des objectifs principaux.
3. Une proposition détaillée de solution (modules essentiels).
4. Une estimation de complexité (Faible, Moyenne, Élevée).
5. Une fourchette estimative du budget.
6. Une estimation du délai.
7. Une liste de risques.
8. Un score de priorité entre 0 et 100, en tenant compte des mots-clés d'urgence, de l'ampleur du budget et de la priorité déclarée.
9. Un indicateur d'urgence (booléen).
10. Des recommandations et des spécifications techniques.

Réponds au format JSON avec les clés suivantes :
{
  "summary": "...",
  "objectives": "...",
  "proposedSolution": "...",
  "complexityLevel": "LOW" | "MEDIUM" | "HIGH",
  "estimatedDuration": "...",
  "estimatedBudgetRange": "...",
  "risks": "...",
  "priorityScore": 0-100,
  "isUrgent": true | false,
  "recommendations": "...",
  "technicalSpecs": "..."
}`

const notProvided = "Non fourni"

func orNotProvided(v *string) string {
	return orElse(v, notProvided)
}

// Each field carries its own French placeholder.
func orElse(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

// buildContext renders the fixed-structure plain-text block handed to the
// completion service, enumerating every client-supplied field.
func buildContext(need *types.Need, files []types.NeedFile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "INFORMATIONS CLIENT:\n")
	fmt.Fprintf(&b, "- Nom: %s\n", need.ClientName)
	fmt.Fprintf(&b, "- Email: %s\n", orNotProvided(need.ClientEmail))
	fmt.Fprintf(&b, "- Téléphone: %s\n", orNotProvided(need.ClientPhone))
	fmt.Fprintf(&b, "- Entreprise: %s\n", orNotProvided(need.CompanyName))

	fmt.Fprintf(&b, "\nPROBLÈME DÉCRIT:\n%s\n", need.ProblemDescription)
	fmt.Fprintf(&b, "\nSITUATION ACTUELLE:\n%s\n", need.CurrentSituation)
	fmt.Fprintf(&b, "\nSOLUTION SOUHAITÉE:\n%s\n", need.DesiredSolution)

	fmt.Fprintf(&b, "\nRÉFÉRENCES D'APPLICATIONS:\n%s\n", orElse(need.KnownAppReferences, "Aucune référence fournie"))

	fmt.Fprintf(&b, "\nBUDGET:\n%s\n", budgetLine(need))
	fmt.Fprintf(&b, "\nDÉLAI:\n%s\n", orElse(need.DeadlinePreference, "Non spécifié"))
	fmt.Fprintf(&b, "\nPRIORITÉ:\n%s\n", need.Priority)

	fmt.Fprintf(&b, "\nLANGUE:\n%s\n", orElse(need.Language, "Non spécifiée"))

	fmt.Fprintf(&b, "\nFICHIERS JOINTS:\n%s\n", fileListing(files))

	return b.String()
}

func budgetLine(need *types.Need) string {
	switch {
	case need.BudgetMin != nil && need.BudgetMax != nil:
		return fmt.Sprintf("%.0f€ - %.0f€", *need.BudgetMin, *need.BudgetMax)
	case need.BudgetMin != nil:
		return fmt.Sprintf("Minimum: %.0f€", *need.BudgetMin)
	case need.BudgetMax != nil:
		return fmt.Sprintf("Maximum: %.0f€", *need.BudgetMax)
	default:
		return "Non spécifié"
	}
}

func fileListing(files []types.NeedFile) string {
	if len(files) == 0 {
		return "Aucun fichier joint"
	}

	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("- %s (%s)", f.OriginalName, f.Type))
	}
	return strings.Join(lines, "\n")
}
