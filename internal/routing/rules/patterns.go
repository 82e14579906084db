// internal/routing/rules/patterns.go
package rules

import (
	"regexp"

	"guest-router/internal/models"
)

// pattern is one keyword/phrase rule. Confidence is fixed per pattern, in
// [0.87, 0.97]: rule matches are high precision by design.
type pattern struct {
	re         *regexp.Regexp
	reason     string
	confidence float64
}

var housekeepingPatterns = []pattern{
	// Cleaning & towels
	{regexp.MustCompile(`\b(toalla|toallas)\b`), "Towels request", 0.95},
	{regexp.MustCompile(`\b(sabana|sabanas|ropa\s+de\s+cama)\b`), "Bed linen request", 0.95},
	{regexp.MustCompile(`\b(limpi|limpiar|limpieza|limpie|limpio|aseo)`), "Cleaning request", 0.92},
	{regexp.MustCompile(`\b(basura|botar.*basura|retirar.*basura)\b`), "Trash removal", 0.93},

	// Amenities
	{regexp.MustCompile(`\b(papel\s*(higienico|ba[nñ]o)|confort)\b`), "Toilet paper request", 0.95},
	{regexp.MustCompile(`\b(jabon|shampoo|acondicionador|amenities)\b`), "Amenities request", 0.93},
	// "almohadas" is intentionally absent: pillow requests fall through to
	// the fallback classifier.

	// General housekeeping
	{regexp.MustCompile(`\b(sucio|sucia|olor|huele|mal\s+olor)\b`), "Cleanliness issue", 0.88},
}

var mantencionPatterns = []pattern{
	// Climate control, before generic malfunction keywords
	{regexp.MustCompile(`\b(aire\s*acondicionado|a/c|ac\b|climatizacion|calefaccion)`), "Climate control issue", 0.95},
	{regexp.MustCompile(`\baire\b.{0,30}\b(no\s+(funciona|sirve|anda)|descompuesto|da[nñ]ado|roto)`), "AC malfunction", 0.93},

	// Water/plumbing
	{regexp.MustCompile(`\b(agua\s+caliente|no\s+tengo\s+agua|no\s+hay\s+agua|sin\s+agua)\b`), "Hot water issue", 0.96},
	{regexp.MustCompile(`\b(ducha|regadera|ba[nñ]o|inodoro|llave|canilla|grifo|fuga)\b`), "Plumbing issue", 0.90},

	// Electrical
	{regexp.MustCompile(`\b(luz|luces|lampara|ampolleta|foco|bombilla|enchufe|electricidad)\b`), "Lighting/electrical issue", 0.90},

	// Electronics
	{regexp.MustCompile(`\b(tv|television|televisor|control\s+remoto)\b`), "TV issue", 0.92},
	{regexp.MustCompile(`\b(wifi|internet|conexion|red|se[nñ]al)\b`), "WiFi/internet issue", 0.93},

	// Structural
	{regexp.MustCompile(`\b(puerta|ventana|cerradura|llave.*habitacion|chapa)\b`), "Door/lock issue", 0.88},
}

var recepcionPatterns = []pattern{
	// Check-in/out
	{regexp.MustCompile(`\b(check\s*out|checkout|late\s+checkout|salida|dejar.*habitacion)\b`), "Checkout inquiry", 0.94},
	{regexp.MustCompile(`\b(check\s*in|checkin|llegada|entrada)\b`), "Check-in inquiry", 0.93},

	// Reservations & payments
	{regexp.MustCompile(`\b(reserva|reservacion|cambiar.*reserva|booking)\b`), "Reservation inquiry", 0.90},
	{regexp.MustCompile(`\b(pago|factura|cuenta|cobro)\b`), "Payment inquiry", 0.91},
	{regexp.MustCompile(`\b(cambiar\s+habitacion|otra\s+habitacion)\b`), "Room change request", 0.92},

	// General info
	{regexp.MustCompile(`\b(horario|hora\s+de|cuando\s+(abre|cierra))\b`), "Schedule inquiry", 0.87},
	{regexp.MustCompile(`\b(caja.*seguridad|fuerte|safe)\b`), "Safe box inquiry", 0.93},
	{regexp.MustCompile(`\b(estacionamiento|parqueo|parking|garage)\b`), "Parking inquiry", 0.92},
	{regexp.MustCompile(`\b(llave.*perdida|perdi.*llave|no\s+tengo\s+llave)\b`), "Lost key", 0.94},
}

var gerenciaPatterns = []pattern{
	// Formal complaints & escalations
	{regexp.MustCompile(`\b(queja\s+formal|presentar.*queja|reclamo\s+formal)\b`), "Formal complaint", 0.97},
	{regexp.MustCompile(`\b(inaceptable|intoler|intolerable|vergonzoso|pesimo|horrible)`), "Strong complaint language", 0.92},
	{regexp.MustCompile(`\b(gerente|manager|hablar.*gerente|ver.*gerente)\b`), "Manager request", 0.94},
	{regexp.MustCompile(`\b(reembolso|devol|compensacion|descuento)`), "Refund/compensation request", 0.90},
	{regexp.MustCompile(`\b(abogado|legal|denuncia|rese[nñ]a\s+negativa)\b`), "Legal threat/review", 0.95},
	{regexp.MustCompile(`\b(queja|reclamo)\b`), "General complaint", 0.88},
}

// areaPatterns lists the pattern groups in routing priority order:
// complaints are caught before generic keywords. SUPERVISION has no rule
// patterns; it can only be assigned by the fallback classifier.
var areaPatterns = []struct {
	area     models.Area
	patterns []pattern
}{
	{models.AreaGerencia, gerenciaPatterns},
	{models.AreaRecepcion, recepcionPatterns},
	{models.AreaMantencion, mantencionPatterns},
	{models.AreaHousekeeping, housekeepingPatterns},
}
