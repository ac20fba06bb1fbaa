package credit

import (
	"math"
	"sort"
)

// Metered feature keys
const (
	FeatureRelatorioExportar  = "relatorio.exportar"
	FeatureIASugestaoEstudo   = "ia.sugestao_estudo"
	FeatureConviteEnvioMassa  = "convite.envio_massa"
	FeatureLeituraPlanoCustom = "leitura.plano_personalizado"
	FeatureCelulaAnaliseSaude = "celula.analise_saude"
	FeatureTrilhaCertificado  = "trilha.certificado"
)

// DefaultFeatureCosts is the price list used when no admin override applies
var DefaultFeatureCosts = map[string]int{
	FeatureRelatorioExportar:  5,
	FeatureIASugestaoEstudo:   3,
	FeatureConviteEnvioMassa:  2,
	FeatureLeituraPlanoCustom: 4,
	FeatureCelulaAnaliseSaude: 2,
	FeatureTrilhaCertificado:  1,
}

// resolveCosts merges overrides onto the defaults. Only finite numbers >= 0 are
// honored; fractional costs round up so a feature is never undercharged.
func resolveCosts(overrides map[string]interface{}) map[string]int {
	costs := make(map[string]int, len(DefaultFeatureCosts)+len(overrides))
	for k, v := range DefaultFeatureCosts {
		costs[k] = v
	}
	for k, raw := range overrides {
		if cost, ok := validCost(raw); ok {
			costs[k] = cost
		}
	}
	return costs
}

func validCost(raw interface{}) (int, bool) {
	v, ok := raw.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt32 {
		return 0, false
	}
	return int(math.Ceil(v)), true
}

func zeroCosts(costs map[string]int) map[string]int {
	zeroed := make(map[string]int, len(costs))
	for k := range costs {
		zeroed[k] = 0
	}
	return zeroed
}

// FeatureKeys returns the known feature keys in order
func FeatureKeys(costs map[string]int) []string {
	keys := make([]string, 0, len(costs))
	for k := range costs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
