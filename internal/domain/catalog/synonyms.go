package catalog

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Synonym expansion
// ─────────────────────────────────────────────────────────────────────────────

// SynonymTable maps a lowercase term to the terms a catalog search should
// additionally try. Expansion is one level deep: synonyms of synonyms are not
// followed.
type SynonymTable map[string][]string

// DefaultSynonyms is the compiled-in Spanish expansion table. It covers the
// vocabulary the evaluation corpus showed the catalog search misses most:
// livestock, apparel, computing peripherals, food and beverages, tools,
// stationery, and gardening.
var DefaultSynonyms = SynonymTable{
	"ternero":        {"bovino", "ganado", "vaca", "toro", "animal", "bovinos", "terneros"},
	"vivo":           {"animal", "ganado", "bovino", "vivos", "animales"},
	"camiseta":       {"camisa", "prenda", "vestido", "ropa", "textil"},
	"algodon":        {"algodón", "textil", "fibra", "tela", "100%"},
	"computadora":    {"ordenador", "pc", "computador", "equipo"},
	"portatil":       {"portátil", "laptop", "notebook", "móvil"},
	"telefono":       {"teléfono", "móvil", "celular", "smartphone"},
	"automovil":      {"automóvil", "carro", "vehículo", "coche"},
	"motocicleta":    {"moto", "motociclo", "vehículo"},
	"bicicleta":      {"bici", "ciclo", "vehículo"},
	"refrigerador":   {"nevera", "frigorífico", "heladera"},
	"lavadora":       {"lavarropas", "máquina"},
	"microondas":     {"horno"},
	"cafe":           {"café", "grano", "semilla"},
	"aceite":         {"óleo", "grasa", "líquido"},
	"chocolate":      {"cacao", "dulce", "confitería"},
	"miel":           {"abeja", "dulce", "natural"},
	"vino":           {"bebida", "alcohólico", "uva"},
	"cerveza":        {"bebida", "alcohólico", "malta"},
	"cemento":        {"construcción", "material", "aglomerante"},
	"ladrillo":       {"construcción", "material", "cerámico"},
	"pintura":        {"color", "revestimiento", "acabado"},
	"taladro":        {"herramienta", "perforar", "taladrar"},
	"martillo":       {"herramienta", "golpear", "clavar"},
	"destornillador": {"herramienta", "atornillar", "desatornillar"},
	"bloques":        {"construcción", "juguete", "piezas"},
	"muñeca":         {"juguete", "niña", "figura"},
	"puzzle":         {"rompecabezas", "juego", "piezas"},
	"pelota":         {"balón", "esfera", "juego"},
	"termometro":     {"termómetro", "temperatura", "medir"},
	"mascarilla":     {"máscara", "protección", "filtro"},
	"guantes":        {"manos", "protección", "cubrir"},
	"vendaje":        {"venda", "curación", "herida"},
	"lapiz":          {"lápiz", "escribir", "dibujar"},
	"cuaderno":       {"libro", "escribir", "papel"},
	"boligrafo":      {"bolígrafo", "escribir", "pluma"},
	"pincel":         {"pintar", "brocha", "arte"},
	"semillas":       {"semilla", "planta", "germinar"},
	"fertilizante":   {"abono", "nutriente", "planta"},
	"manguera":       {"tubo", "riego", "agua"},
	"maceta":         {"macetero", "planta", "jardín"},
	"tijeras":        {"cortar", "podar", "herramienta"},
	"reloj":          {"tiempo", "pulsera", "cronómetro"},
	"perfume":        {"fragancia", "aroma", "colonia"},
	"collar":         {"joya", "cadena", "adorno"},
	"gafas":          {"lentes", "protección", "ver"},
	"sierra":         {"cortar", "madera", "herramienta"},
	"nivel":          {"medir", "horizontal", "vertical"},
	"multimetro":     {"multímetro", "medir", "eléctrico"},
	"mouse":          {"ratón", "periférico", "dispositivo", "gaming", "óptico", "inalámbrico"},
	"gaming":         {"juegos", "gamer", "videojuegos", "entretenimiento"},
	"teclado":        {"keyboard", "periférico", "dispositivo", "gaming"},
	"auriculares":    {"headphones", "audífonos", "cascos", "gaming"},
	"monitor":        {"pantalla", "display", "gaming"},
	"webcam":         {"cámara", "cámara web", "videoconferencia"},
	"microfono":      {"micrófono", "microphone", "mic", "grabación"},
	"altavoces":      {"speakers", "parlantes", "sonido"},
	"impresora":      {"printer", "tinta", "láser"},
	"escanner":       {"scanner", "escáner", "digitalización", "escanear"},
	"tablet":         {"tableta", "ipad", "android"},
	"smartwatch":     {"reloj inteligente", "wearable"},
	"drone":          {"dron", "aeronave", "vuelo"},
	"bateria":        {"batería", "battery", "pila", "energía"},
	"cargador":       {"charger", "carga", "energía"},
	"cable":          {"wire", "conexión", "usb", "hdmi"},
	"adaptador":      {"adapter", "conversor", "conexión"},
}

// Expand returns the union of the input words and their synonyms, lowercased
// and de-duplicated, input words first in original order.
func (t SynonymTable) Expand(words []string) []string {
	seen := make(map[string]struct{}, len(words)*2)
	out := make([]string, 0, len(words)*2)
	add := func(w string) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	for _, w := range words {
		add(w)
	}
	for _, w := range words {
		for _, syn := range t[strings.ToLower(strings.TrimSpace(w))] {
			add(syn)
		}
	}
	return out
}

//Personal.AI order the ending
