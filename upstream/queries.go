package upstream

const loginMutation = `
mutation LoginUser($email: String!, $password: String!) {
  loginUser(input: { email: $email, password: $password }) {
    accessToken
  }
}`

const getUserQuery = `
query GetUser($userId: String!) {
  getUser(userId: $userId) {
    success
    errors
    user {
      id
      email
      role
      businessId
    }
  }
}`

const getFloorsQuery = `
query GetFloors($businessId: String!) {
  getFloors(businessId: $businessId) {
    id
    name
    tables {
      id
      name
      status
      capacity
      shape
      coordX
      coordY
      hasActiveOrder
      orders {
        id
        status
        subtotal
        tax
        discount
        tip
        total
        items {
          id
          productId
          quantity
          unitPrice
          total
          product {
            id
            name
            price
          }
        }
      }
    }
  }
}`

const getAllOrdersQuery = `
query getAllOrders($businessId: String!) {
  getAllOrders(businessId: $businessId) {
    id
    status
    total
    createdAt
    table {
      id
      name
    }
    user {
      name
    }
    items {
      id
      quantity
      unitPrice
      note
      product {
        name
        price
      }
    }
  }
}`

const getOrderQuery = `
query Order($id: ID!) {
  order(id: $id) {
    id
    tableId
    status
    total
    createdAt
    items {
      id
      quantity
      total
      note
      product {
        name
      }
    }
  }
}`

const getProductsQuery = `
query GetProducts($businessId: ID!) {
  products(businessId: $businessId) {
    id
    name
    price
    description
    category
  }
}`

const createOrderMutation = `
mutation CreateOrder($input: CreateOrderInput!) {
  createOrder(input: $input) {
    id
    orders {
      id
      status
      total
      createdAt
      tableId
    }
  }
}`

const updateOrderStatusMutation = `
mutation UpdateOrderStatus($input: UpdateOrderStatusInput!) {
  updateOrderStatus(input: $input) {
    id
    status
  }
}`

const updateOrderItemsMutation = `
mutation UpdateOrderItems($orderId: ID!, $items: [OrderItemUpdateInput!]!) {
  updateOrderItems(orderId: $orderId, items: $items) {
    id
    total
    items {
      id
      productId
      name
      quantity
      unitPrice
      total
    }
  }
}`

const deleteOrderMutation = `
mutation DeleteOrder($input: DeleteOrderInput!) {
  deleteOrder(input: $input)
}`

const changeTableStatusMutation = `
mutation ChangeTableStatus($input: ChangeTableStatusInput!) {
  changeTableStatus(input: $input) {
    id
    status
    hasActiveOrder
  }
}`

const createSaleMutation = `
mutation CreateSaleFromTable($tableId: ID!, $businessId: ID!, $userId: ID!) {
  createSaleFromTableOrders(tableId: $tableId, businessId: $businessId, userId: $userId) {
    id
    status
  }
}`
