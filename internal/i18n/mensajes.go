package i18n

var mensajes = map[Idioma]map[string]string{
	ES: {
		// errores
		"no_autenticado":           "Sesión no válida o expirada",
		"credenciales_invalidas":   "Credenciales inválidas",
		"usuario_existente":        "Ya existe un usuario con ese email",
		"permisos_insuficientes":   "Permisos insuficientes",
		"propuesta_no_encontrada":  "Propuesta no encontrada",
		"estado_invalido":          "Estado desconocido: %s",
		"estado_terminal":          "La propuesta está en un estado final (%s) y no admite cambios",
		"mismo_estado":             "La propuesta ya está en el estado %s",
		"estado_abandonado":        "No se puede volver a %s",
		"transicion_no_permitida":  "Transición no permitida: %s → %s",
		"conflicto_concurrente":    "La propuesta fue modificada por otro usuario, recargue e intente de nuevo",
		"captura_invalida":         "Faltan datos obligatorios para el cambio de estado",
		"transicion_no_encontrada": "El cambio de estado pendiente expiró o no existe",
		"articulo_no_encontrado":   "Artículo no encontrado en la propuesta",
		"archivo_invalido":         "Archivo inválido",
		"almacenamiento_no_disp":   "Almacenamiento de archivos no disponible",
		"error_guardar":            "No se pudo guardar el cambio",
		"error_interno":            "Error interno del servidor",
		"json_invalido":            "JSON inválido: %s",
		"validacion":               "Error de validación",
		"id_invalido":              "ID inválido",
		"preferencia_invalida":     "Preferencia desconocida: %s",
		"rol_invalido":             "Rol inválido: %s",
		"demasiados_intentos":      "Demasiados intentos de login. Intente en 1 minuto.",
		"demasiadas_solicitudes":   "Demasiadas solicitudes. Intente nuevamente en un momento.",
		"notificacion_no_enviada":  "No se pudo enviar la notificación",
		"notificacion_ya_enviada":  "La alerta ya fue notificada",
		"sin_alerta":               "La propuesta no tiene alertas activas",
		"notificacion_en_curso":    "La alerta se está enviando, intente en un momento",
		"usuario_no_encontrado":    "Usuario no encontrado",
		"producto_existente":       "Ya existe un producto con ese código",
		"proveedor_existente":      "Ya existe un proveedor con ese nombre",
		"registro_existente":       "El registro ya existe",
		"no_encontrado":            "Recurso no encontrado",
		"follow_up_no_disponible":  "Follow-ups no disponibles",
		"exportacion_fallida":      "No se pudo generar el archivo",

		// historial
		"hist_cambio_estado":           "%s → %s",
		"hist_encomenda":               "Encomenda %s a %s (%s)",
		"hist_motivo_rechazo":          "Motivo: %s",
		"hist_factura":                 "Factura %s, valor adjudicado %s",
		"hist_cliente":                 "Cliente nº %s (%s)",
		"hist_articulos_seleccionados": "%d artículo(s) seleccionado(s)",
		"hist_fotos":                   "%d foto(s)",
		"hist_documentos":              "%d documento(s) de dossier",
		"hist_pedido_compra":           "Pedido de compra con %d artículo(s)",
		"hist_articulos_adjudicados":   "%d artículo(s) adjudicado(s) por el cliente",
		"hist_campo":                   "%s: %s → %s",
		"hist_fecha_entrega":           "%s: entrega prevista %s",
		"hist_fecha_entrega_cambio":    "%s: entrega prevista %s → %s",
		"hist_articulos_encomendados":  "%d artículo(s) encomendado(s), nº %s del %s",
		"hist_follow_up":               "Follow-up realizado el %s",
		"hist_follow_up_futuro":        "Próximo follow-up el %s",
		"vacio":                        "(vacío)",

		// motivos de rechazo
		"motivo_precio":               "Precio",
		"motivo_plazo_entrega":        "Plazo de entrega",
		"motivo_competencia":          "Competencia",
		"motivo_sin_respuesta":        "Sin respuesta del cliente",
		"motivo_producto_no_adecuado": "Producto no adecuado",
		"motivo_otro":                 "Otro",

		// alertas
		"alerta_15_dias":           "%d días sin respuesta desde el envío",
		"alerta_follow_up_vencido": "Follow-up previsto para el %s vencido",

		// campos editables
		"campo_nombre_cliente":     "Cliente",
		"campo_nombre_comercial":   "Comercial",
		"campo_nombre_responsable": "Responsable",
		"campo_pais":               "País",
		"campo_area_negocio":       "Área de negocio",
		"campo_numero_cliente":     "Nº cliente",
		"campo_tipo_cliente":       "Tipo de cliente",
		"campo_comentarios":        "Comentarios",

		// documentos y correo
		"doc_propuesta":        "Propuesta",
		"doc_cliente":          "Cliente",
		"doc_comercial":        "Comercial",
		"doc_fecha":            "Fecha",
		"doc_estado":           "Estado",
		"doc_articulo":         "Artículo",
		"doc_cantidad":         "Cant.",
		"doc_precio":           "Precio",
		"doc_subtotal":         "Subtotal",
		"doc_total":            "Total",
		"doc_encomendas":       "Encomendas",
		"doc_historial":        "Historial",
		"doc_alertas":          "Alertas",
		"doc_numero":           "Nº",
		"correo_alerta_asunto": "Propuesta %d: %s",
		"correo_alerta_cuerpo": "Propuesta %d de %s (comercial %s).\n%s",
	},
	PT: {
		"no_autenticado":           "Sessão inválida ou expirada",
		"credenciales_invalidas":   "Credenciais inválidas",
		"usuario_existente":        "Já existe um utilizador com esse email",
		"permisos_insuficientes":   "Permissões insuficientes",
		"propuesta_no_encontrada":  "Proposta não encontrada",
		"estado_invalido":          "Estado desconhecido: %s",
		"estado_terminal":          "A proposta está num estado final (%s) e não admite alterações",
		"mismo_estado":             "A proposta já está no estado %s",
		"estado_abandonado":        "Não é possível voltar a %s",
		"transicion_no_permitida":  "Transição não permitida: %s → %s",
		"conflicto_concurrente":    "A proposta foi alterada por outro utilizador, recarregue e tente novamente",
		"captura_invalida":         "Faltam dados obrigatórios para a mudança de estado",
		"transicion_no_encontrada": "A mudança de estado pendente expirou ou não existe",
		"articulo_no_encontrado":   "Artigo não encontrado na proposta",
		"archivo_invalido":         "Ficheiro inválido",
		"almacenamiento_no_disp":   "Armazenamento de ficheiros indisponível",
		"error_guardar":            "Não foi possível guardar a alteração",
		"error_interno":            "Erro interno do servidor",
		"json_invalido":            "JSON inválido: %s",
		"validacion":               "Erro de validação",
		"id_invalido":              "ID inválido",
		"preferencia_invalida":     "Preferência desconhecida: %s",
		"rol_invalido":             "Função inválida: %s",
		"demasiados_intentos":      "Demasiadas tentativas de login. Tente dentro de 1 minuto.",
		"demasiadas_solicitudes":   "Demasiados pedidos. Tente novamente dentro de momentos.",
		"notificacion_no_enviada":  "Não foi possível enviar a notificação",
		"notificacion_ya_enviada":  "O alerta já foi notificado",
		"sin_alerta":               "A proposta não tem alertas ativos",
		"notificacion_en_curso":    "O alerta está a ser enviado, tente daqui a pouco",
		"usuario_no_encontrado":    "Utilizador não encontrado",
		"producto_existente":       "Já existe um produto com esse código",
		"proveedor_existente":      "Já existe um fornecedor com esse nome",
		"registro_existente":       "O registo já existe",
		"no_encontrado":            "Recurso não encontrado",
		"follow_up_no_disponible":  "Follow-ups indisponíveis",
		"exportacion_fallida":      "Não foi possível gerar o ficheiro",

		"hist_cambio_estado":           "%s → %s",
		"hist_encomenda":               "Encomenda %s a %s (%s)",
		"hist_motivo_rechazo":          "Motivo: %s",
		"hist_factura":                 "Fatura %s, valor adjudicado %s",
		"hist_cliente":                 "Cliente nº %s (%s)",
		"hist_articulos_seleccionados": "%d artigo(s) selecionado(s)",
		"hist_fotos":                   "%d foto(s)",
		"hist_documentos":              "%d documento(s) de dossier",
		"hist_pedido_compra":           "Pedido de compra com %d artigo(s)",
		"hist_articulos_adjudicados":   "%d artigo(s) adjudicado(s) pelo cliente",
		"hist_campo":                   "%s: %s → %s",
		"hist_fecha_entrega":           "%s: entrega prevista %s",
		"hist_fecha_entrega_cambio":    "%s: entrega prevista %s → %s",
		"hist_articulos_encomendados":  "%d artigo(s) encomendado(s), nº %s de %s",
		"hist_follow_up":               "Follow-up realizado em %s",
		"hist_follow_up_futuro":        "Próximo follow-up em %s",
		"vacio":                        "(vazio)",

		"motivo_precio":               "Preço",
		"motivo_plazo_entrega":        "Prazo de entrega",
		"motivo_competencia":          "Concorrência",
		"motivo_sin_respuesta":        "Sem resposta do cliente",
		"motivo_producto_no_adecuado": "Produto não adequado",
		"motivo_otro":                 "Outro",

		"alerta_15_dias":           "%d dias sem resposta desde o envio",
		"alerta_follow_up_vencido": "Follow-up previsto para %s vencido",

		"campo_nombre_cliente":     "Cliente",
		"campo_nombre_comercial":   "Comercial",
		"campo_nombre_responsable": "Responsável",
		"campo_pais":               "País",
		"campo_area_negocio":       "Área de negócio",
		"campo_numero_cliente":     "Nº cliente",
		"campo_tipo_cliente":       "Tipo de cliente",
		"campo_comentarios":        "Comentários",

		// documentos y correo
		"doc_propuesta":        "Proposta",
		"doc_cliente":          "Cliente",
		"doc_comercial":        "Comercial",
		"doc_fecha":            "Data",
		"doc_estado":           "Estado",
		"doc_articulo":         "Artigo",
		"doc_cantidad":         "Qtd.",
		"doc_precio":           "Preço",
		"doc_subtotal":         "Subtotal",
		"doc_total":            "Total",
		"doc_encomendas":       "Encomendas",
		"doc_historial":        "Histórico",
		"doc_alertas":          "Alertas",
		"doc_numero":           "Nº",
		"correo_alerta_asunto": "Proposta %d: %s",
		"correo_alerta_cuerpo": "Proposta %d de %s (comercial %s).\n%s",
	},
	EN: {
		"no_autenticado":           "Session invalid or expired",
		"credenciales_invalidas":   "Invalid credentials",
		"usuario_existente":        "A user with that email already exists",
		"permisos_insuficientes":   "Insufficient permissions",
		"propuesta_no_encontrada":  "Proposal not found",
		"estado_invalido":          "Unknown status: %s",
		"estado_terminal":          "The proposal is in a final status (%s) and cannot change",
		"mismo_estado":             "The proposal is already in status %s",
		"estado_abandonado":        "Cannot go back to %s",
		"transicion_no_permitida":  "Transition not allowed: %s → %s",
		"conflicto_concurrente":    "The proposal was changed by someone else, reload and try again",
		"captura_invalida":         "Required data for the status change is missing",
		"transicion_no_encontrada": "The pending status change expired or does not exist",
		"articulo_no_encontrado":   "Line item not found in the proposal",
		"archivo_invalido":         "Invalid file",
		"almacenamiento_no_disp":   "File storage unavailable",
		"error_guardar":            "The change could not be saved",
		"error_interno":            "Internal server error",
		"json_invalido":            "Invalid JSON: %s",
		"validacion":               "Validation error",
		"id_invalido":              "Invalid ID",
		"preferencia_invalida":     "Unknown preference: %s",
		"rol_invalido":             "Invalid role: %s",
		"demasiados_intentos":      "Too many login attempts. Try again in 1 minute.",
		"demasiadas_solicitudes":   "Too many requests. Try again shortly.",
		"notificacion_no_enviada":  "The notification could not be sent",
		"notificacion_ya_enviada":  "The alert was already notified",
		"sin_alerta":               "The proposal has no active alerts",
		"notificacion_en_curso":    "The alert is being sent, try again shortly",
		"usuario_no_encontrado":    "User not found",
		"producto_existente":       "A product with that code already exists",
		"proveedor_existente":      "A supplier with that name already exists",
		"registro_existente":       "The record already exists",
		"no_encontrado":            "Resource not found",
		"follow_up_no_disponible":  "Follow-ups unavailable",
		"exportacion_fallida":      "The file could not be generated",

		"hist_cambio_estado":           "%s → %s",
		"hist_encomenda":               "Order %s to %s (%s)",
		"hist_motivo_rechazo":          "Reason: %s",
		"hist_factura":                 "Invoice %s, awarded value %s",
		"hist_cliente":                 "Client no. %s (%s)",
		"hist_articulos_seleccionados": "%d line item(s) selected",
		"hist_fotos":                   "%d photo(s)",
		"hist_documentos":              "%d dossier document(s)",
		"hist_pedido_compra":           "Purchase request with %d line item(s)",
		"hist_articulos_adjudicados":   "%d line item(s) awarded by the client",
		"hist_campo":                   "%s: %s → %s",
		"hist_fecha_entrega":           "%s: expected delivery %s",
		"hist_fecha_entrega_cambio":    "%s: expected delivery %s → %s",
		"hist_articulos_encomendados":  "%d line item(s) ordered, no. %s on %s",
		"hist_follow_up":               "Follow-up done on %s",
		"hist_follow_up_futuro":        "Next follow-up on %s",
		"vacio":                        "(empty)",

		"motivo_precio":               "Price",
		"motivo_plazo_entrega":        "Lead time",
		"motivo_competencia":          "Competition",
		"motivo_sin_respuesta":        "No answer from client",
		"motivo_producto_no_adecuado": "Product not suitable",
		"motivo_otro":                 "Other",

		"alerta_15_dias":           "%d days without answer since sending",
		"alerta_follow_up_vencido": "Follow-up planned for %s is overdue",

		"campo_nombre_cliente":     "Client",
		"campo_nombre_comercial":   "Salesperson",
		"campo_nombre_responsable": "Responsible",
		"campo_pais":               "Country",
		"campo_area_negocio":       "Business area",
		"campo_numero_cliente":     "Client no.",
		"campo_tipo_cliente":       "Client type",
		"campo_comentarios":        "Comments",

		// documentos y correo
		"doc_propuesta":        "Proposal",
		"doc_cliente":          "Client",
		"doc_comercial":        "Sales rep",
		"doc_fecha":            "Date",
		"doc_estado":           "Status",
		"doc_articulo":         "Item",
		"doc_cantidad":         "Qty",
		"doc_precio":           "Price",
		"doc_subtotal":         "Subtotal",
		"doc_total":            "Total",
		"doc_encomendas":       "Orders",
		"doc_historial":        "History",
		"doc_alertas":          "Alerts",
		"doc_numero":           "No.",
		"correo_alerta_asunto": "Proposal %d: %s",
		"correo_alerta_cuerpo": "Proposal %d for %s (sales rep %s).\n%s",
	},
}
